package logging

import (
	"context"
	"log/slog"
	"strings"
)

type requestInfo struct {
	requestID string
	clientIP  string
	route     string
	adminID   string
}

type requestInfoKey struct{}

// WithRequestContext stores request metadata in context for auditing.
func WithRequestContext(ctx context.Context, requestID, clientIP, route string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	info := &requestInfo{
		requestID: strings.TrimSpace(requestID),
		clientIP:  strings.TrimSpace(clientIP),
		route:     strings.TrimSpace(route),
	}
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// WithAdminID records the authenticated admin on the request metadata. The
// metadata is shared with outer middleware, so the access log sees it too.
// It is a no-op when WithRequestContext was never called.
func WithAdminID(ctx context.Context, adminID string) context.Context {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		info.adminID = strings.TrimSpace(adminID)
	}
	return ctx
}

// AdminID returns the admin recorded by WithAdminID, if any.
func AdminID(ctx context.Context) string {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		return info.adminID
	}
	return ""
}

// RequestAttrs returns slog attributes for request metadata.
func RequestAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	info, ok := ctx.Value(requestInfoKey{}).(*requestInfo)
	if !ok {
		return nil
	}
	attrs := make([]slog.Attr, 0, 4)
	if info.requestID != "" {
		attrs = append(attrs, slog.String("request_id", info.requestID))
	}
	if info.clientIP != "" {
		attrs = append(attrs, slog.String("client_ip", info.clientIP))
	}
	if info.route != "" {
		attrs = append(attrs, slog.String("route", info.route))
	}
	if info.adminID != "" {
		attrs = append(attrs, slog.String("admin_id", info.adminID))
	}
	return attrs
}
