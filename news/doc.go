// Package news fetches candidate articles for tracked topics.
//
// Source is the narrow collaborator ingestion depends on. SerperClient
// implements it against the Serper Google News API, and BuildQuery derives a
// search string from a topic key when the topic table does not supply one.
package news
