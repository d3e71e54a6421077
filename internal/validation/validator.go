// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

// Package validation provides struct validation using go-playground/validator v10.
// It exposes a thread-safe singleton validator instance shared by the config
// loader and the HTTP request handlers.
//
// Example usage:
//
//	type UpdateEventRequest struct {
//	    ChannelID string `json:"channelId" validate:"required"`
//	    EventID   string `json:"eventId" validate:"required"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    respondError(w, http.StatusBadRequest, err.Error())
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance, initializing it on first use.
// The instance caches struct metadata and is safe for concurrent use.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError represents a single field validation failure.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Error returns the human-readable message for this field failure.
func (e FieldError) Error() string {
	return e.Message
}

// StructError is a collection of field validation failures for one struct.
type StructError struct {
	fields []FieldError
}

// Fields returns the individual field failures.
func (e *StructError) Fields() []FieldError {
	return e.fields
}

// Error implements the error interface, joining all field messages.
func (e *StructError) Error() string {
	if len(e.fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		messages = append(messages, f.Message)
	}
	return strings.Join(messages, "; ")
}

// ValidateStruct validates a struct using its `validate` tags.
// Returns nil on success, a *StructError describing every failed field
// otherwise.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: caller passed a non-struct
		return err
	}

	structErr := &StructError{}
	for _, fe := range verrs {
		structErr.fields = append(structErr.fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return structErr
}

// fieldMessage builds a readable message for a single field error.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
