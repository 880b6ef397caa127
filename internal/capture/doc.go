// Package capture feeds captured HTTP traffic into the interaction ingestor.
//
// Raw interaction documents arrive on a NATS subject or through an HTTP POST
// endpoint. Each one is ingested independently; accepted interactions go to
// a Sink and rejected ones are logged and counted without affecting others.
package capture
