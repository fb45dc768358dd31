package common

import (
	"context"
	"time"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyAnonKey       ContextKey = "anon_key"
	ContextKeyCorrelationID ContextKey = "correlation_id"
	ContextKeyClientIP      ContextKey = "client_ip"
	ContextKeyStartTime     ContextKey = "start_time"
)

// WithAnonKey adds the anonymous key to context
func WithAnonKey(ctx context.Context, anonKey string) context.Context {
	return context.WithValue(ctx, ContextKeyAnonKey, anonKey)
}

// GetAnonKey extracts the anonymous key from context
func GetAnonKey(ctx context.Context) (string, bool) {
	anonKey, ok := ctx.Value(ContextKeyAnonKey).(string)
	return anonKey, ok
}

// WithCorrelationID adds the correlation id to context
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, ContextKeyCorrelationID, correlationID)
}

// GetCorrelationID extracts the correlation id from context
func GetCorrelationID(ctx context.Context) (string, bool) {
	correlationID, ok := ctx.Value(ContextKeyCorrelationID).(string)
	return correlationID, ok
}

// WithClientIP adds the client IP to context
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextKeyClientIP, ip)
}

// GetClientIP extracts the client IP from context
func GetClientIP(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(ContextKeyClientIP).(string)
	return ip, ok
}

// WithStartTime adds start time to context
func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyStartTime, startTime)
}

// GetStartTime extracts start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(ContextKeyStartTime).(time.Time)
	return startTime, ok
}

// GetElapsedTime calculates elapsed time from start time in context
func GetElapsedTime(ctx context.Context) time.Duration {
	if startTime, ok := GetStartTime(ctx); ok {
		return time.Since(startTime)
	}
	return 0
}
