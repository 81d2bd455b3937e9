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

// Package httpclient is the HTTP client AltCloud uses for outbound
// downloads such as cover art.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	DefaultTimeout = 10 * time.Second
	// MaxDownloadBytes bounds a single download.
	MaxDownloadBytes = 16 << 20
)

var ErrTooLarge = errors.New("download exceeds size limit")

// UserAgentTransport tags every request with the AltCloud version.
type UserAgentTransport struct {
	Base http.RoundTripper
}

func (t *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", config.AppName+"/"+config.AppVersion)

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform HTTP round trip: %w", err)
	}
	return resp, nil
}

var DefaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 10 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          20,
	MaxIdleConnsPerHost:   4,
	IdleConnTimeout:       90 * time.Second,
}

type Client struct {
	*http.Client
	fs afero.Fs
}

// NewClient returns a client writing downloads to fs with the given
// overall request timeout.
func NewClient(fs afero.Fs, timeout time.Duration) *Client {
	return &Client{
		Client: &http.Client{
			Transport: &UserAgentTransport{Base: DefaultTransport},
			Timeout:   timeout,
		},
		fs: fs,
	}
}

type DownloadFileArgs struct {
	URL        string
	OutputPath string
}

// DownloadFile fetches URL into OutputPath. The body is written to a
// sibling temp file and renamed into place only when complete, so a failed
// download never leaves a partial file at OutputPath.
func (c *Client) DownloadFile(ctx context.Context, args DownloadFileArgs) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, args.URL, http.NoBody)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("error getting url: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("invalid status code: %d", resp.StatusCode)
	}
	if resp.ContentLength > MaxDownloadBytes {
		return ErrTooLarge
	}

	tmpPath := args.OutputPath + ".part"
	file, err := c.fs.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	written, err := io.Copy(file, io.LimitReader(resp.Body, MaxDownloadBytes+1))
	closeErr := file.Close()
	switch {
	case err != nil:
		err = fmt.Errorf("error downloading file: %w", err)
	case written > MaxDownloadBytes:
		err = ErrTooLarge
	case resp.ContentLength > 0 && written != resp.ContentLength:
		err = fmt.Errorf("download incomplete: expected %d bytes, got %d", resp.ContentLength, written)
	case closeErr != nil:
		err = fmt.Errorf("error closing file: %w", closeErr)
	}
	if err == nil {
		err = c.fs.Rename(tmpPath, args.OutputPath)
		if err != nil {
			err = fmt.Errorf("error renaming temp file: %w", err)
		}
	}
	if err != nil {
		if removeErr := c.fs.Remove(tmpPath); removeErr != nil {
			log.Warn().Err(removeErr).Msgf("error removing partial download: %s", tmpPath)
		}
		return err
	}
	return nil
}
