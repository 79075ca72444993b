/*
 *  Copyright 2025 qitoi
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */

// Package logger builds the process zap logger: info-and-below to one
// sink, warnings-and-above to another, both reopenable on signal for
// log rotation.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.Logger
	info  WriteSyncReopener
	error WriteSyncReopener
}

func New(info, error WriteSyncReopener, level zapcore.Level) *Logger {
	highPriority := zap.LevelEnablerFunc(func(lv zapcore.Level) bool {
		return lv >= zapcore.WarnLevel && lv >= level
	})
	lowPriority := zap.LevelEnablerFunc(func(lv zapcore.Level) bool {
		return lv < zapcore.WarnLevel && lv >= level
	})

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	infoSyncer := zapcore.Lock(info)
	errorSyncer := zapcore.Lock(error)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, errorSyncer, highPriority),
		zapcore.NewCore(encoder, infoSyncer, lowPriority),
	)

	return &Logger{
		Logger: zap.New(core),
		info:   info,
		error:  error,
	}
}

// Build assembles a logger from optional file paths, defaulting to
// stdout/stderr.
func Build(level zapcore.Level, infoPath, errorPath string) (*Logger, error) {
	var err error

	info := Wrap(os.Stdout)
	if infoPath != "" {
		info, err = OpenFile(infoPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			return nil, err
		}
	}

	errorOut := Wrap(os.Stderr)
	if errorPath != "" {
		errorOut, err = OpenFile(errorPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			return nil, err
		}
	}

	return New(info, errorOut, level), nil
}

func (l *Logger) Reopen() error {
	if err := l.info.Reopen(); err != nil {
		return err
	}
	return l.error.Reopen()
}
