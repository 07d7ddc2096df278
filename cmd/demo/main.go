// Command demo runs tickfsm machines from the command line: the built-in
// traffic light or a YAML machine document.
package main

func main() {
	Execute()
}
