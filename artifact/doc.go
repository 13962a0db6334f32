// Package artifact makes remote files, such as model weights, available
// on local disk in a verified state.
//
// A [Fetcher] reuses an existing file when it passes SHA-256
// verification and otherwise downloads a fresh copy:
//
//	f, err := artifact.NewFetcher(httpClient,
//		artifact.WithLogger(logger),
//		artifact.WithProgress(reporter),
//	)
//	path, err := f.Acquire(ctx, artifact.Descriptor{
//		SourceURL: "https://example.com/yolo11s_tci.pt",
//		Path:      "models/yolo11s_tci.pt",
//		Digest:    "81e5b661...",
//	}, false)
//
// Downloads are staged beside the destination and renamed into place
// only after verification. Failures match [ErrDownloadFailed],
// [ErrIntegrityFailure] or [ErrInvalidDescriptor]; nothing is left at
// the destination when Acquire fails.
//
// A [Verifier] can also be used on its own. It never returns an error:
// an empty digest yields [Skipped] and an unreadable file yields
// [Mismatch].
package artifact
