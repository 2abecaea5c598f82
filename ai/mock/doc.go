// Package mock provides test doubles for the ai package interfaces.
//
// The mocks are safe for concurrent use, so they can stand in for real
// services behind worker pools. Behaviour is injected through function
// fields:
//
//	summ := mock.NewMockSummarizer()
//	summ.SummarizeFunc = func(ctx context.Context, a core.RawArticle) (string, error) {
//	    return "", errors.New("model offline")
//	}
//
//	// Check call counts
//	count := summ.CallCount()
//
// # Default Behavior
//
//   - MockSummarizer: returns "Summary: <title>"
//   - MockAnswerer: returns "Answer from N entries"
//   - MockProvider: aggregates a mock summarizer and answerer
package mock
