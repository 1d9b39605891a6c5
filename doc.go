// Package swarm provides a Go client for the Perforce Helix Swarm REST API.
//
// The API version is part of the connection URL and is fixed for the lifetime
// of a client. Operations introduced in a later API version fail with a
// [*CompatibilityError] before any request is sent.
//
// Basic usage:
//
//	client, err := swarm.New("https://swarm.example.com/api/v9", "alice", "ticket")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	review, err := client.Reviews().Info(ctx, 12204, []string{"id", "state"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("State:", review.Get("review.state").String())
//
// Retries are disabled by default. Enable them with [WithRetry] or
// [WithRetryOptions]:
//
//	client, err := swarm.New(url, user, password, swarm.WithRetryOptions(map[string]any{
//	    "total":    5,
//	    "factor":   1,
//	    "statuses": []int{500, 503},
//	}))
//
// [NewAsync] returns an [AsyncClient] whose operations are submitted with
// [Submit] and collected with [Future.Await] or [AwaitAll].
//
// Errors are one of [*Error], [*NotFoundError] or [*CompatibilityError]; all
// implement [SwarmError].
package swarm
