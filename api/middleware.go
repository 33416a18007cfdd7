// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/latticelabs/nodeintel/pkg/extensions"
)

// authInfoKey is the gin context key the auth middleware stores the
// caller identity under.
const authInfoKey = "auth_info"

// AuthMiddleware returns middleware that authenticates every request
// through the given provider and stores the resulting identity in the
// request context.
//
// The token is taken from the Authorization header, with an optional
// "Bearer " prefix. With the default NopAuthProvider every request
// passes as the local admin user, so local deployments need no tokens.
func AuthMiddleware(provider extensions.AuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		info, err := provider.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error: "Authentication failed",
				Code:  "UNAUTHORIZED",
			})
			return
		}
		c.Set(authInfoKey, info)
		c.Next()
	}
}

// userIDFromContext returns the authenticated user id, or "anonymous"
// when no auth middleware ran.
func userIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(authInfoKey); ok {
		if info, ok := v.(*extensions.AuthInfo); ok && info.UserID != "" {
			return info.UserID
		}
	}
	return "anonymous"
}

// WriteRateLimiter returns middleware that throttles mutating requests
// (POST, PUT, DELETE) with a shared token bucket. Read requests pass
// through unthrottled.
//
// Inputs:
//
//	limit - Sustained writes per second. <= 0 disables throttling.
//	burst - Maximum burst size.
//
// Outputs:
//
//	gin.HandlerFunc - The middleware
func WriteRateLimiter(limit float64, burst int) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := rate.NewLimiter(rate.Limit(limit), burst)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !limiter.Allow() {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
					Error: "Write rate limit exceeded",
					Code:  "RATE_LIMITED",
				})
				return
			}
		}
		c.Next()
	}
}
