// Package validator validates request and domain structs.
//
// Business code depends on the Validator interface; V10Validator is the
// go-playground/validator v10 implementation with English messages. Field
// keys in V10ValidationError follow the struct's json tags.
package validator
