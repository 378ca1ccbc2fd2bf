// htlb is an HTTP reverse proxy load balancer: it terminates client TCP
// connections, selects one of several configured backend origins under a
// pluggable policy, and relays HTTP/1.1 request and response framing
// byte-for-byte while a background health supervisor keeps routing
// restricted to live origins.
//
// Usage:
//
//	# Start the proxy with a configuration file
//	htlb start -c /etc/htlb/config.yaml
//
//	# Ask a running instance for its status
//	htlb status
//
//	# Ask a running instance to shut down
//	htlb stop
//
//	# Validate a configuration file without starting anything
//	htlb validate -c /etc/htlb/config.yaml
package main

func main() {
	Execute()
}
