package index

// Kind identifies a column's scalar kind.
type Kind uint8

const (
	// KindInvalid is the zero value.
	KindInvalid Kind = iota
	// KindString is a variable-length string.
	KindString
	// KindInt8 is a signed 8-bit integer.
	KindInt8
	// KindInt16 is a signed 16-bit integer.
	KindInt16
	// KindInt32 is a signed 32-bit integer.
	KindInt32
	// KindInt64 is a signed 64-bit integer.
	KindInt64
	// KindUint8 is an unsigned 8-bit integer.
	KindUint8
	// KindUint16 is an unsigned 16-bit integer.
	KindUint16
	// KindUint32 is an unsigned 32-bit integer.
	KindUint32
	// KindUint64 is an unsigned 64-bit integer.
	KindUint64
	// KindFloat32 is a 32-bit float.
	KindFloat32
	// KindFloat64 is a 64-bit float.
	KindFloat64
	// KindBool is a boolean.
	KindBool
	// KindArray is an array; the element kind lives in DataType.Elem.
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// IsString reports whether k is a string kind.
func (k Kind) IsString() bool {
	return k == KindString
}

// IsNumeric reports whether k is an integer or float kind.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64:
		return true
	default:
		return false
	}
}

// Width returns the encoded byte width of a fixed-width kind, or 0 for
// variable-width and invalid kinds.
func (k Kind) Width() int {
	switch k {
	case KindInt8, KindUint8, KindBool:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// DataType describes a column's logical type. Arrays nest one level: the
// element kind is scalar.
type DataType struct {
	Kind Kind
	Elem Kind // element kind when Kind == KindArray
}

// String constructs a string column type.
func String() DataType { return DataType{Kind: KindString} }

// ArrayOf constructs an array column type with the given element kind.
func ArrayOf(elem Kind) DataType { return DataType{Kind: KindArray, Elem: elem} }

// Scalar constructs a scalar column type.
func Scalar(k Kind) DataType { return DataType{Kind: k} }

// Column pairs an index field name with its logical type.
type Column struct {
	Name string
	Type DataType
}
