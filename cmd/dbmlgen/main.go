// dbmlgen generates migrations, models, services and controllers from a
// DBML schema.
package main

func main() {
	Execute()
}
