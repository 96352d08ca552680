// Package ticketcsv reads the processed ticket export used to fill the
// analytics store, and the request and result files of batch predictions.
package ticketcsv
