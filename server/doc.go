// Package server exposes the question, partition and topic endpoints over HTTP
// using gin.
//
//	POST /api/query                     route a question and answer it
//	POST /partitions/:topicKey/query    answer from one topic
//	POST /partitions/:topicKey/update   ingest pushed articles into one topic
//	GET  /api/topics                    list tracked topics
//	POST /api/refresh                   start a background refresh cycle
//	GET  /health                        liveness
package server
