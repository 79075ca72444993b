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

package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	applog "github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/logger"
)

// watchLogReopenSignal reopens log files on SIGUSR1 so external
// rotation can move them aside.
func watchLogReopenSignal(log *applog.Logger, sugared *zap.SugaredLogger) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	go func() {
		for range ch {
			if err := log.Reopen(); err != nil {
				sugared.Errorw("log reopen error", "error", err)
			}
		}
	}()
}
