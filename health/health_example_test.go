// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package health_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/z5labs/typedapi/health"
	"github.com/z5labs/typedapi/rest"
)

func ExampleNamed() {
	store := health.MonitorFunc(func(ctx context.Context) (bool, error) {
		return false, errors.New("connection refused")
	})

	_, err := health.Named("store", store).Healthy(context.Background())

	var cerr *health.CheckError
	fmt.Println(errors.As(err, &cerr), cerr.Name)
	fmt.Println(err)
	// Output:
	// true store
	// health check store failed: connection refused
}

func ExampleNamed_readiness() {
	var store health.Binary

	api := rest.NewApi(
		"Pet Store",
		"v1.0.0",
		rest.Readiness(health.And(
			health.Named("store", &store),
		)),
	)

	probe := func() int {
		w := httptest.NewRecorder()
		api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
		return w.Code
	}

	fmt.Println(probe())

	store.MarkHealthy()
	fmt.Println(probe())

	store.MarkUnhealthy()
	fmt.Println(probe())
	// Output:
	// 503
	// 200
	// 503
}

func ExampleOr() {
	var primary, replica health.Binary
	replica.MarkHealthy()

	healthy, _ := health.Or(&primary, &replica).Healthy(context.Background())
	fmt.Println(healthy)

	replica.MarkUnhealthy()

	healthy, _ = health.Or(&primary, &replica).Healthy(context.Background())
	fmt.Println(healthy)
	// Output:
	// true
	// false
}
