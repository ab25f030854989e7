// Package http contains the chi HTTP handlers exposing the dashboard
// reports to the frontend.
package http
