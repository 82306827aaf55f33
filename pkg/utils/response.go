// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.

package utils

import "github.com/gin-gonic/gin"

// Success wraps a payload in the standard success envelope.
func Success(payload gin.H) gin.H {
	out := gin.H{"success": true}
	for k, v := range payload {
		out[k] = v
	}
	return out
}

// Failure builds the standard error envelope.
func Failure(message string) gin.H {
	return gin.H{"success": false, "error": message}
}
