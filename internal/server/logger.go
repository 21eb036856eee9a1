// file: internal/server/logger.go
// version: 2.0.0
// guid: 1d2e3f4a-5b6c-7d8e-9f0a-1b2c3d4e5f6a

package server

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int32

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var minLevel atomic.Int32

func init() {
	minLevel.Store(int32(InfoLevel))
}

// ParseLogLevel maps a config value onto a LogLevel. Unknown names mean info.
func ParseLogLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// SetLogLevel sets the minimum level written by the server loggers.
func SetLogLevel(level LogLevel) {
	minLevel.Store(int32(level))
}

func enabled(level LogLevel) bool {
	return int32(level) >= minLevel.Load()
}

// OperationLogger tracks the lifecycle of a handler operation
type OperationLogger struct {
	handler    string
	method     string
	path       string
	startTime  time.Time
	requestID  string
	resourceID string
	details    map[string]any
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(handler, method, path, requestID string) *OperationLogger {
	return &OperationLogger{
		handler:   handler,
		method:    method,
		path:      path,
		startTime: time.Now(),
		requestID: requestID,
		details:   make(map[string]any),
	}
}

// SetResourceID sets the resource ID being operated on
func (ol *OperationLogger) SetResourceID(id string) {
	ol.resourceID = id
}

// AddDetail adds a contextual detail to the operation log
func (ol *OperationLogger) AddDetail(key string, value any) {
	ol.details[key] = value
}

func (ol *OperationLogger) suffix() string {
	var b strings.Builder
	if ol.resourceID != "" {
		fmt.Fprintf(&b, " (resource: %s)", ol.resourceID)
	}
	if len(ol.details) > 0 {
		keys := make([]string, 0, len(ol.details))
		for k := range ol.details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, ol.details[k])
		}
	}
	fmt.Fprintf(&b, " [request-id: %s]", ol.requestID)
	return b.String()
}

// LogStart logs the start of the operation
func (ol *OperationLogger) LogStart() {
	if !enabled(DebugLevel) {
		return
	}
	log.Printf("[DEBUG] [START] %s %s%s", ol.method, ol.path, ol.suffix())
}

// LogSuccess logs the successful completion of the operation
func (ol *OperationLogger) LogSuccess(statusCode int) {
	if !enabled(InfoLevel) {
		return
	}
	log.Printf("[INFO] [SUCCESS] %s %s (%d) in %v%s",
		ol.method, ol.path, statusCode, time.Since(ol.startTime), ol.suffix())
}

// LogError logs an error that occurred during the operation
func (ol *OperationLogger) LogError(statusCode int, err error) {
	log.Printf("[ERROR] %s %s (%d) in %v: %v%s",
		ol.method, ol.path, statusCode, time.Since(ol.startTime), err, ol.suffix())
}

// LogWarning logs a warning message
func (ol *OperationLogger) LogWarning(message string) {
	if !enabled(WarnLevel) {
		return
	}
	log.Printf("[WARN] %s: %s [request-id: %s]", ol.handler, message, ol.requestID)
}

// ServiceLogger provides logging for service layer operations
type ServiceLogger struct {
	serviceName string
	requestID   string
}

// NewServiceLogger creates a new service logger
func NewServiceLogger(serviceName, requestID string) *ServiceLogger {
	return &ServiceLogger{
		serviceName: serviceName,
		requestID:   requestID,
	}
}

// LogOperation logs the execution of a service operation
func (sl *ServiceLogger) LogOperation(operation string, details map[string]any) {
	if !enabled(InfoLevel) {
		return
	}
	detailStr := ""
	if len(details) > 0 {
		detailStr = fmt.Sprintf(" %v", details)
	}
	log.Printf("[INFO] %s.%s%s [request-id: %s]",
		sl.serviceName, operation, detailStr, sl.requestID)
}

// LogError logs an error from the service
func (sl *ServiceLogger) LogError(operation string, err error) {
	log.Printf("[ERROR] %s.%s: %v [request-id: %s]",
		sl.serviceName, operation, err, sl.requestID)
}

// LogDebug logs a debug message from the service
func (sl *ServiceLogger) LogDebug(operation string, message string) {
	if !enabled(DebugLevel) {
		return
	}
	log.Printf("[DEBUG] %s.%s: %s [request-id: %s]",
		sl.serviceName, operation, message, sl.requestID)
}
