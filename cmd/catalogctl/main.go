// Command catalogctl zeroes bundle checksums in Addressables content
// catalogs and edits exported string tables.
package main

func main() {
	execute()
}
