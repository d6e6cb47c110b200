// Silta - Backstage catalog to Glean search index connector
package main

func main() {
	Execute()
}
