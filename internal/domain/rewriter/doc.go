/*
Package rewriter applies the optimization rules to an HTML stream.

Rules, in application order:

 1. <base href> to the origin, first in the first <head>
 2. preconnect hints from the suggestion, else the first extracted domains
 3. dns-prefetch hints for the next extracted domains
 4. JSON-LD structured data from the suggestion
 5. preload hints for suggested critical resources
 6. viewport and X-UA-Compatible meta tags
 7. meta description replacement (existing tag only)
 8. image lazy-loading below the fold, fetchpriority=high above it
 9. iframe lazy-loading
 10. async on tracking scripts
 11. print-media swap for font and icon stylesheets
 12. attribution comment at the start of <body>

Author-specified attributes are never overridden. Rewrite state such as the
image ordinal lives in a per-pass value, so one Engine serves concurrent
requests.
*/
package rewriter
