// Package provider defines the translation backends.
package provider

import "github.com/ZaguanLabs/pugtl"

// Provider is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Provider = pugtl.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = pugtl.TranslateRequest
