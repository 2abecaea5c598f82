// Package topics holds the tracked topic table and the router that maps
// free-text questions onto it.
//
// The table is static configuration: it is loaded once at process start,
// either from the embedded default or from a YAML file, and is never mutated
// afterwards. Routing is purely table driven, so adding a topic or alias is a
// configuration change:
//
//	router, _ := topics.NewRouter(topics.Default())
//	key := router.Resolve("How is Ferrari doing?", "auto") // team_ferrari
//
// Identical (question, hint, table) inputs always resolve to the same key.
package topics
