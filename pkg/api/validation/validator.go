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

// Package validation checks API request parameters with
// go-playground/validator plus a few AltCloud-specific tags.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingParams = errors.New("missing params")
	ErrInvalidParams = errors.New("invalid params")
)

var windowsAbsPath = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("process", validateProcess)
	_ = v.RegisterValidation("savepath", validateSavePath)
	return &Validator{validate: v}
}

var DefaultValidator = NewValidator()

// Validate checks params and returns an *Error listing every failed field.
func (v *Validator) Validate(params any) error {
	if err := v.validate.Struct(params); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewError(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ValidateAndUnmarshal decodes params into dest and validates it.
func ValidateAndUnmarshal[T any](params json.RawMessage, dest *T) error {
	if len(params) == 0 || string(params) == "null" {
		return ErrMissingParams
	}
	if err := json.Unmarshal(params, dest); err != nil {
		return ErrInvalidParams
	}
	return DefaultValidator.Validate(dest)
}

// UnmarshalOptional is ValidateAndUnmarshal for methods whose params may
// be omitted; dest is left untouched then.
func UnmarshalOptional[T any](params json.RawMessage, dest *T) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	return ValidateAndUnmarshal(params, dest)
}

// validateProcess accepts a bare executable name such as "Game.exe".
func validateProcess(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" {
		return true
	}
	return !strings.ContainsAny(val, `/\:*?"<>|`)
}

// validateSavePath accepts an absolute path on either Windows or Unix.
func validateSavePath(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return filepath.IsAbs(val) || windowsAbsPath.MatchString(val) || strings.HasPrefix(val, "/")
}
