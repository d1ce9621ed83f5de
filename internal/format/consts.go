// Package format houses the low-level layout constants and record decoders for
// Addressables content catalogs in their three on-disk shapes: the binary
// offset-graph catalog, the JSON catalog and the UnityFS bundle wrapping a JSON
// catalog as a TextAsset. Higher-level packages orchestrate traversal and patching.
package format

// ContainerSignature is the 7-byte ASCII signature at the start of a UnityFS bundle.
var ContainerSignature = []byte("UnityFS")

const (
	// BinaryMagic is the first int32 of a binary catalog when read in the
	// catalog's own byte order. BinaryMagicSwapped is the same value seen through
	// the opposite byte order.
	BinaryMagic        uint32 = 0x0DE38942
	BinaryMagicSwapped uint32 = 0x4289E30D

	// Binary catalog header. Every field is one 32-bit word.
	//
	//	Offset  Size  Description
	//	------  ----  ---------------------------------------------
	//	 0x00    4    magic
	//	 0x04    4    format version (1 or 2 are understood)
	//	 0x08    4    offset of the key/location-list pair array, or -1
	BinaryMagicOffset      = 0x00
	BinaryVersionOffset    = 0x04
	BinaryKeysOffsetOffset = 0x08
	BinaryHeaderSize       = 0x0C

	// WordSize is the size of every integer field in the binary catalog.
	WordSize = 4

	// NullOffset marks an absent reference. It is never dereferenced.
	NullOffset int32 = -1

	// String references carry two flag bits above a 30-bit byte offset.
	StringFlagUnicode uint32 = 0x80000000
	StringFlagDynamic uint32 = 0x40000000
	StringOffsetMask  uint32 = 0x3FFFFFFF

	// DynamicStringNodeSize is the size of one fragment node: (partRef, nextRef).
	DynamicStringNodeSize = 2 * WordSize

	// Resource location record, in words from the location offset.
	//
	//	word 0  primary key
	//	word 1  internal id
	//	word 2  provider id (string reference)
	//	word 3  dependency set
	//	word 4  dependency hash
	//	word 5  extra data
	//	word 6  resource type
	LocationProviderWord = 2
	LocationDataWord     = 5

	// Extra data object: word 1 holds the relative object offset; the object
	// payload starts two words past that value.
	DataObjectOffsetWord = 1
	DataObjectHeaderSize = 2 * WordSize

	// FragmentSeparatorV2 joins reversed fragments for catalog versions above 1.
	FragmentSeparatorV2 = '.'

	// MaxFragments bounds a single fragmented string chain.
	MaxFragments = 1 << 16
)

// Known binary catalog versions. Other versions are processed best-effort.
const (
	BinaryVersion1 int32 = 1
	BinaryVersion2 int32 = 2
)

const (
	// AssetBundleProviderType is the fully qualified provider type name whose
	// locations carry bundle checksums.
	AssetBundleProviderType = "UnityEngine.ResourceManagement.ResourceProviders.AssetBundleProvider"

	// AssetBundleProviderSuffix is matched against JSON provider ids in suffix mode.
	AssetBundleProviderSuffix = "AssetBundleProvider"

	// ChecksumProperty is the name of the CRC property inside bundle request options.
	ChecksumProperty = "m_Crc"
)

// JSON catalog member names.
const (
	JSONProviderIDs = "m_ProviderIds"
	JSONEntryData   = "m_EntryDataString"
	JSONExtraData   = "m_ExtraDataString"
)

const (
	// EntryDataFields is the number of int32 fields per entry data record.
	EntryDataFields = 7
	// EntryDataSize is the packed size of one entry data record.
	EntryDataSize = EntryDataFields * WordSize
	// EntryDataCountSize is the size of the leading record count.
	EntryDataCountSize = 4
)

// Extra data object type tags.
const (
	ObjectTypeASCIIString   byte = 0
	ObjectTypeUnicodeString byte = 1
	ObjectTypeUInt16        byte = 2
	ObjectTypeUInt32        byte = 3
	ObjectTypeInt32         byte = 4
	ObjectTypeHash128       byte = 5
	ObjectTypeType          byte = 6
	ObjectTypeJSON          byte = 7
)

const (
	// TextAssetClassID is the Unity class id of TextAsset objects.
	TextAssetClassID int32 = 49

	// TextAssetAlignment is the alignment applied after each serialized string.
	TextAssetAlignment = 4
)
