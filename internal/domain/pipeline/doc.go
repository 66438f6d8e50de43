/*
Package pipeline drives one proxied request end to end:

	resolve -> fetch -> (non-HTML: passthrough) -> extract -> advise -> rewrite

Everything from the fetch to the first rewritten bytes runs inside a fault
boundary. Any error or panic there triggers exactly one unmodified re-fetch
of the same upstream URL, which is returned as-is. Only when that re-fetch
also fails does the client see a 502.

Requests that are not GET or HEAD, and paths matching a bypass glob, are
forwarded without extraction or advisor calls.
*/
package pipeline
