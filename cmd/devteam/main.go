// Command devteam runs the AI persona dev team against epics and tasks.
package main

func main() {
	Execute()
}
