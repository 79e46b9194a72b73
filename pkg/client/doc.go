// Package client is a Go client for the tasktrack HTTP API.
//
// Every call except Health needs a bearer token:
//
//	c, err := client.NewClient(
//	    client.WithHost("localhost"),
//	    client.WithPort(7432),
//	    client.WithToken(token),
//	)
//	if err != nil {
//	    return err
//	}
//
//	dep, err := c.CreateDependency(ctx, client.CreateDependencyRequest{
//	    PredecessorTaskID: "tsk-design",
//	    SuccessorTaskID:   "tsk-build",
//	    DependencyType:    client.FinishToStart,
//	})
//	if client.IsCycleDetected(err) {
//	    // err.(*client.Error).Context["path"] holds the cycle
//	}
package client
