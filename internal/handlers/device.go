package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DeviceCookieName identifies a browser across visits. The cookie stands
// in for the device: the vote lock and the draft both key off it.
const DeviceCookieName = "cv_device"

type contextKey string

const deviceIDKey contextKey = "device_id"

// DeviceCookie issues a random device id on first contact and carries it
// on the request context afterwards
func DeviceCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(DeviceCookieName); err == nil && cookie.Value != "" {
			id = cookie.Value
		} else {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     DeviceCookieName,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(365 * 24 * time.Hour),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), deviceIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// deviceID returns the device id carried on the request context
func deviceID(r *http.Request) string {
	if id, ok := r.Context().Value(deviceIDKey).(string); ok {
		return id
	}
	return ""
}
