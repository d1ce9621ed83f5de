// Package catalog patches Addressables content catalogs so that the runtime
// skips bundle checksum verification.
//
// A catalog comes in one of three shapes, told apart by its first bytes:
//
//   - a UnityFS bundle holding the JSON catalog as a TextAsset,
//   - a binary offset-graph catalog (magic 0x0DE38942 in either byte order),
//   - plain JSON text.
//
// Binary catalogs are patched in place through a shared mapping; only the
// 4-byte checksum words change. JSON catalogs and bundles are rewritten
// atomically. In every case a backup is copied to path+suffix immediately
// before the first real change, and a run that finds nothing to zero leaves
// the file and any previous backup alone.
//
// Typical use:
//
//	p := catalog.New(catalog.Options{Logger: log})
//	res, err := p.PatchFile(ctx, "catalog.bin")
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Modified, res.Fields)
package catalog
