// Command nyuzisim runs a load-miss-queue simulation.
package main

func main() {
	Execute()
}
