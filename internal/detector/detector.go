// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package detector provides the OpenTelemetry resource detectors applied
// to every typedapi service.
package detector

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"go.opentelemetry.io/otel/sdk"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

type detectorFunc func(context.Context) (*resource.Resource, error)

func (f detectorFunc) Detect(ctx context.Context) (*resource.Resource, error) {
	return f(ctx)
}

// TelemetrySDK describes the OpenTelemetry SDK in use.
func TelemetrySDK() resource.Detector {
	return detectorFunc(func(context.Context) (*resource.Resource, error) {
		return resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.TelemetrySDKName("opentelemetry"),
			semconv.TelemetrySDKLanguageGo,
			semconv.TelemetrySDKVersion(sdk.Version()),
		), nil
	})
}

// Process describes the running process and its Go runtime.
func Process() resource.Detector {
	return detectorFunc(func(context.Context) (*resource.Resource, error) {
		return resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ProcessPID(os.Getpid()),
			semconv.ProcessRuntimeName("go"),
			semconv.ProcessRuntimeVersion(runtime.Version()),
		), nil
	})
}

// Host sets host.name from the operating system.
func Host() resource.Detector {
	return resource.StringDetector(semconv.SchemaURL, semconv.HostNameKey, os.Hostname)
}

// ServiceName sets service.name, falling back to the executable name when
// name is empty.
func ServiceName(name string) resource.Detector {
	return resource.StringDetector(semconv.SchemaURL, semconv.ServiceNameKey, func() (string, error) {
		if len(name) > 0 {
			return name, nil
		}
		executable, err := os.Executable()
		if err != nil {
			return "unknown_service:go", nil
		}
		return "unknown_service:" + filepath.Base(executable), nil
	})
}

// ServiceVersion sets service.version.
func ServiceVersion(version string) resource.Detector {
	return resource.StringDetector(semconv.SchemaURL, semconv.ServiceVersionKey, func() (string, error) {
		return version, nil
	})
}
