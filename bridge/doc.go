// Package bridge turns a push-based Source, one that invokes registered
// handlers whenever a named occurrence happens, into an ordered sequence the
// consumer pulls one Element at a time.
//
// A Bridge subscribes to three sets of kinds:
//   - data kinds become Elements, delivered in firing order across all kinds
//   - completion kinds end the sequence cleanly
//   - failure kinds end the sequence with a Source Failure
//
// Subscriptions are released exactly once, on the first completion or
// failure occurrence, or when the consumer calls Close.
//
// The producer is never blocked: occurrences are buffered without bound until
// the consumer pulls them.
//
//	b := bridge.New(src, bridge.Roles{
//		Data:       []bridge.Kind{"data"},
//		Completion: []bridge.Kind{"end"},
//		Failure:    []bridge.Kind{"error"},
//	})
//
//	for el, err := range b.All(ctx) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(el.Kind, el.Args)
//	}
package bridge
