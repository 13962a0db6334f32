// Package client provides the HTTP transport used to fetch model
// artifacts, built on [net/http].
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Minute),
//		client.WithUserAgent("pontos-model/1.0"),
//		client.WithRetry(2, 500*time.Millisecond, 30*time.Second),
//	)
//
// # Fetching
//
// [Client.Fetch] issues a GET and streams a 2xx body to a callback,
// together with the advertised length:
//
//	err = c.Fetch(ctx, rawURL, func(body io.Reader, size int64) error {
//		_, err := io.Copy(dst, body)
//		return err
//	})
//
// Non-2xx responses are returned as [*UnexpectedStatusError] carrying at
// most the first 4KB of the body. Transport errors, 429 and 5xx are
// retried with jittered exponential backoff when [WithRetry] is set.
// Requests can be rate limited with [WithThrottle]; see the
// [github.com/pontos-detect/pontos/client/throttle] package.
//
// A *Client satisfies the Transport interface of the
// [github.com/pontos-detect/pontos/artifact] package.
package client
