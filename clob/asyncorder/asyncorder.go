// Package asyncorder runs the market-order resolution pipeline
// (tick size -> price -> neg risk -> fee rate -> sign -> submit) off the
// calling goroutine, delivering exactly one result.
package asyncorder

import (
	"context"
	"fmt"
	"sync"

	"polyclob/clob"
	"polyclob/internal/signer"
)

// Result is delivered exactly once, either holding a successful response
// or the error that aborted the pipeline.
type Result struct {
	Response clob.OrderResponse
	Err      error
}

// Submit runs CreateMarketOrder's resolution stages and the final POST on
// a background goroutine and returns a channel that receives exactly one
// Result. It stands in for the reference implementation's chain of
// mutually-capturing closures over libcurl's multi-handle: Go's goroutine
// plus a single result channel is the idiomatic translation of that
// resolve-price -> resolve-neg-risk -> resolve-fee-rate -> submit chain,
// not a literal callback-by-callback port.
func Submit(ctx context.Context, client *clob.Client, params clob.CreateMarketOrderParams, orderType string) <-chan Result {
	out := make(chan Result, 1)

	if !client.IsAuthenticated() {
		out <- Result{Err: fmt.Errorf("client not authenticated")}
		close(out)
		return out
	}

	go func() {
		defer close(out)
		resp, err := client.CreateAndPostMarketOrder(ctx, params, orderType)
		select {
		case <-ctx.Done():
			out <- Result{Err: ctx.Err()}
		default:
			out <- Result{Response: resp, Err: err}
		}
	}()

	return out
}

// SubmitBatch resolves and signs every order in params concurrently (each
// one fetching whatever inputs its StrictNoFetch flag doesn't pre-supply),
// then submits all of them together in a single batch POST so the exchange
// sees one envelope array rather than N separate order POSTs. Results are
// returned in the same order as params; an order that fails to resolve or
// sign never reaches the batch and carries its own error directly.
func SubmitBatch(ctx context.Context, client *clob.Client, params []clob.CreateMarketOrderParams, orderType string) []Result {
	results := make([]Result, len(params))
	if !client.IsAuthenticated() {
		for i := range results {
			results[i] = Result{Err: fmt.Errorf("client not authenticated")}
		}
		return results
	}

	orders := make([]signer.SignedOrder, len(params))
	signErrs := make([]error, len(params))
	var wg sync.WaitGroup
	for i, p := range params {
		wg.Add(1)
		go func(i int, p clob.CreateMarketOrderParams) {
			defer wg.Done()
			orders[i], signErrs[i] = client.CreateMarketOrder(ctx, p)
		}(i, p)
	}
	wg.Wait()

	entries := make([]clob.BatchOrderEntry, 0, len(params))
	entryIndex := make([]int, 0, len(params))
	for i, err := range signErrs {
		if err != nil {
			results[i] = Result{Err: err}
			continue
		}
		entries = append(entries, clob.BatchOrderEntry{Order: orders[i], OrderType: orderType})
		entryIndex = append(entryIndex, i)
	}
	if len(entries) == 0 {
		return results
	}

	responses, err := client.PostOrders(ctx, entries)
	if err != nil {
		for _, i := range entryIndex {
			results[i] = Result{Err: err}
		}
		return results
	}

	for j, i := range entryIndex {
		if j < len(responses) {
			results[i] = Result{Response: responses[j]}
		} else {
			results[i] = Result{Err: fmt.Errorf("batch response missing entry for order %d", i)}
		}
	}
	return results
}
