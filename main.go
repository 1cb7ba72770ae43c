/*
Trapped walks a chess knight over the integers numbered along a square spiral. From each
square the knight moves to the lowest-numbered square it has not yet visited, until every
square within reach has been visited and the knight is trapped. The walk can be printed,
or served as a single page on which the knight's trail is animated in realtime over a websocket.
*/
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
