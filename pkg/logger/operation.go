package logger

import (
	"time"
)

// StepRecord is one completed step of a traced operation
type StepRecord struct {
	Name     string        `json:"name"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// OperationLogger provides structured logging for a multi-step operation with timing
type OperationLogger struct {
	logger    Logger
	operation string
	fields    Fields
	startTime time.Time
	stepStart time.Time
	current   string
	steps     []StepRecord
	now       func() time.Time
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(operation string, logger Logger) *OperationLogger {
	if logger == nil {
		logger = GetGlobalLogger()
	}

	ol := &OperationLogger{
		logger:    logger,
		operation: operation,
		fields:    make(Fields),
		now:       time.Now,
	}
	ol.startTime = ol.now()

	ol.logger.WithField("operation", operation).Debug("Starting operation")
	return ol
}

// WithField adds a field to the operation context
func (ol *OperationLogger) WithField(key string, value interface{}) *OperationLogger {
	ol.fields[key] = value
	return ol
}

// WithFields adds multiple fields to the operation context
func (ol *OperationLogger) WithFields(fields Fields) *OperationLogger {
	for k, v := range fields {
		ol.fields[k] = v
	}
	return ol
}

func (ol *OperationLogger) entry() Logger {
	fields := Fields{"operation": ol.operation}
	for k, v := range ol.fields {
		fields[k] = v
	}
	return ol.logger.WithFields(fields)
}

// Step closes the running step, if any, and starts a new one
func (ol *OperationLogger) Step(step string) {
	ol.closeStep()
	ol.current = step
	ol.stepStart = ol.now()
	ol.entry().WithField("step", step).Debug("Operation step")
}

func (ol *OperationLogger) closeStep() {
	if ol.current == "" {
		return
	}
	ol.steps = append(ol.steps, StepRecord{
		Name:     ol.current,
		Started:  ol.stepStart,
		Duration: ol.now().Sub(ol.stepStart),
	})
	ol.current = ""
}

// Steps returns the steps completed so far
func (ol *OperationLogger) Steps() []StepRecord {
	return ol.steps
}

// Success completes the operation successfully
func (ol *OperationLogger) Success(message string) {
	ol.closeStep()
	ol.entry().WithFields(Fields{
		"duration": ol.now().Sub(ol.startTime).String(),
		"status":   "success",
		"steps":    len(ol.steps),
	}).Info(message)
}

// Error completes the operation with an error
func (ol *OperationLogger) Error(err error, message string) {
	ol.closeStep()
	ol.entry().WithError(err).WithFields(Fields{
		"duration": ol.now().Sub(ol.startTime).String(),
		"status":   "error",
	}).Error(message)
}

// Debug logs a detail of the operation
func (ol *OperationLogger) Debug(message string, fields Fields) {
	ol.entry().WithFields(fields).Debug(message)
}

// Warning logs a warning during the operation
func (ol *OperationLogger) Warning(message string) {
	ol.entry().Warn(message)
}

// TimedOperation executes a function and logs timing information
func TimedOperation(operation string, logger Logger, fn func() error) error {
	ol := NewOperationLogger(operation, logger)

	if err := fn(); err != nil {
		ol.Error(err, "Operation failed")
		return err
	}

	ol.Success("Operation completed successfully")
	return nil
}
