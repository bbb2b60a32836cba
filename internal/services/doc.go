// Package services defines the error taxonomy and context annotations shared
// by pipeline stages and the stores they write to.
package services
