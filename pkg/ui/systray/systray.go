// AltCloud
// Copyright (c) 2026 The AltCloud Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of AltCloud.
//
// AltCloud is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// AltCloud is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with AltCloud.  If not, see <http://www.gnu.org/licenses/>.

// Package systray is the notification area icon of the desktop build.
package systray

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"fyne.io/systray"
	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/nakomaNS/AltCloud/pkg/helpers"
	"github.com/nakomaNS/AltCloud/pkg/service"
	"github.com/nixinwang/dialog"
	"github.com/rs/zerolog/log"
)

//go:embed icon.ico
var icon []byte

func openCommand(goos string) string {
	switch goos {
	case "windows":
		return "explorer"
	case "darwin":
		return "open"
	default:
		return "xdg-open"
	}
}

func open(target string) error {
	//nolint:gosec // target is one of our own paths
	if err := exec.Command(openCommand(runtime.GOOS), target).Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}

// Tooltip summarises the game statuses for the icon's hover text.
func Tooltip(statuses []models.GameStatus) string {
	title := config.AppName + " v" + config.AppVersion
	var running, syncing, pending int
	for i := range statuses {
		if statuses[i].Running {
			running++
		}
		if statuses[i].Syncing {
			syncing++
		}
		if statuses[i].State == "needs_sync" {
			pending++
		}
	}
	switch {
	case syncing > 0:
		return fmt.Sprintf("%s\nSyncing %d game(s)", title, syncing)
	case running > 0:
		return fmt.Sprintf("%s\nWatching %d running game(s)", title, running)
	case pending > 0:
		return fmt.Sprintf("%s\n%d game(s) need sync", title, pending)
	default:
		return title
	}
}

// setStartWithWindows updates the registry entry first so the setting only
// changes when autostart did.
func setStartWithWindows(settings *config.Settings, enabled bool) error {
	if err := helpers.SetAutostart(enabled); err != nil {
		return fmt.Errorf("failed to set autostart: %w", err)
	}
	vals := settings.Get()
	vals.StartWithWindows = enabled
	err := settings.Set(vals)
	if errors.Is(err, config.ErrSettingsPersist) {
		log.Warn().Err(err).Msg("autostart changed but settings were not saved")
		return nil
	}
	return err
}

func watchStatus(ctx context.Context, h *service.Handle) {
	ns, id := h.Broker.Subscribe("systray", 8)
	defer h.Broker.Unsubscribe(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ns:
			if !ok {
				return
			}
			if n.Method != models.NotificationGamesStatus {
				continue
			}
			if st, ok := n.Params.(models.GamesStatusResponse); ok {
				systray.SetTooltip(Tooltip(st.Games))
			}
		}
	}
}

func onReady(ctx context.Context, cfg *config.Instance, h *service.Handle) func() {
	return func() {
		systray.SetIcon(icon)
		if runtime.GOOS != "darwin" {
			systray.SetTitle(config.AppName)
		}
		systray.SetTooltip(Tooltip(nil))

		mConfig := systray.AddMenuItem("Open config folder", "Open the AltCloud config folder")
		mLog := systray.AddMenuItem("View log file", "View the AltCloud log file")
		systray.AddSeparator()

		mAutostart := systray.AddMenuItemCheckbox(
			"Start with Windows",
			"Start AltCloud when you sign in",
			h.Settings.Get().StartWithWindows,
		)
		if runtime.GOOS != "windows" {
			mAutostart.Hide()
		}

		systray.AddSeparator()
		mVersion := systray.AddMenuItem("Version "+config.AppVersion, "")
		mVersion.Disable()
		mAbout := systray.AddMenuItem("About AltCloud", "")

		systray.AddSeparator()
		mQuit := systray.AddMenuItem("Quit", "Stop watching games and quit")

		go watchStatus(ctx, h)

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-mConfig.ClickedCh:
					if err := open(cfg.Dir()); err != nil {
						log.Error().Err(err).Msg("error opening config folder")
					}
				case <-mLog.ClickedCh:
					if err := open(helpers.LogPath(cfg.Dir())); err != nil {
						log.Error().Err(err).Msg("error opening log file")
					}
				case <-mAutostart.ClickedCh:
					enabled := !mAutostart.Checked()
					if err := setStartWithWindows(h.Settings, enabled); err != nil {
						log.Error().Err(err).Msg("error changing autostart")
						dialog.Message("Could not change the startup setting:\n%v", err).
							Title("AltCloud").Error()
						continue
					}
					if enabled {
						mAutostart.Check()
					} else {
						mAutostart.Uncheck()
					}
				case <-mAbout.ClickedCh:
					msg := "AltCloud\n" +
						"Version v%s\n\n" +
						"© %d AltCloud Contributors\n" +
						"License: GPLv3"
					dialog.Message(msg, config.AppVersion, time.Now().Year()).
						Title("About AltCloud").Info()
				case <-mQuit.ClickedCh:
					systray.Quit()
					return
				}
			}
		}()
	}
}

// Run blocks on the tray loop until Quit is chosen, then calls exit.
func Run(ctx context.Context, cfg *config.Instance, h *service.Handle, exit func()) {
	systray.Run(onReady(ctx, cfg, h), exit)
}

// Quit ends a running tray loop.
func Quit() {
	systray.Quit()
}
