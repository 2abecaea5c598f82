// Package pitwall answers questions about a Formula 1 season from a
// per-topic memory of summarized news.
//
// Questions are routed to one tracked topic (a team, a driver, a race or the
// season overview), and answered from that topic's partition only. Partitions
// grow by ingesting news articles: each article is summarized by a language
// model and appended as a KnowledgeEntry. A refresh driver pulls fresh news
// for every topic on a schedule.
//
//	svc, err := pitwall.NewService("./pitwall-data",
//	    pitwall.WithAIConfig(ai.DefaultConfig()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	result, err := svc.Answer(ctx, "How is Ferrari doing?", "auto")
package pitwall
