// Package utils bounds untrusted JSON before it is embedded into documents.
package utils
