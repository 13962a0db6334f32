// Package throttle provides an [http.RoundTripper] that spaces out
// artifact requests with a token bucket from [golang.org/x/time/rate].
//
// Mirrors and model hubs commonly answer bursts of downloads with 429;
// wrapping the transport keeps retries and parallel fetches under a
// configured rate:
//
//	rt, err := throttle.NewRoundTripper(
//		throttle.Config{RPS: 2, Burst: 1},
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//	httpClient := &http.Client{Transport: rt}
//
// A request waits for a token until one is available or its context
// ends.
package throttle
