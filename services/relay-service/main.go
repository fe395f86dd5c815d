package main

import "github.com/sitekit/mailrelay/services/relay-service/internal/app"

func main() {
	app.Execute()
}
