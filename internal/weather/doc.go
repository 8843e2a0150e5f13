// Package weather is the HTTP gateway to the external weather service.
//
// Every request carries the configured group number and the house GPS
// coordinate. Responses share one shape:
//
//	{"measurement": 14.2, "unit": "C", "info": "..."}
//
// Transport failures, non-2xx statuses and undecodable bodies are all
// reported as ErrUnavailable wrapped with detail.
package weather
