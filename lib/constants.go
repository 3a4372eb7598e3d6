package cc2svn

// HistoryFieldSeparator delimits the fields of a cleartool -fmt event.
// Three at-signs never appear in version-extended paths, which use two.
const HistoryFieldSeparator = "@@@"

// HistoryFormat is passed to cleartool verbatim; the trailing backslash-n
// is expanded by cleartool itself, not by us.
// Fields: date, element path, version id, operation, labels, attributes,
// element type, user, comment, empty trailer.
const HistoryFormat = "%Nd@@@%En@@@%Vn@@@%o@@@%l@@@%a@@@%m@@@%u@@@%Nc@@@\\n"

// historyFieldCount is how many fields a complete event splits into,
// counting the empty trailer after the final separator.
const historyFieldCount = 10

const (
	Newline                 = "\n"
	VersionStringHeader     = "SVN-fs-dump-format-version"
	UUIDHeader              = "UUID"
	RevisionNumberHeader    = "Revision-number"
	PropContentLengthHeader = "Prop-content-length"
	TextContentLengthHeader = "Text-content-length"
	TextContentMd5Header    = "Text-content-md5"
	ContentLengthHeader     = "Content-length"
	NodePathHeader          = "Node-path"
	NodeKindHeader          = "Node-kind"
	NodeActionHeader        = "Node-action"
	NodeCopyfromRevHeader   = "Node-copyfrom-rev"
	NodeCopyfromPathHeader  = "Node-copyfrom-path"
	PropsEnd                = "PROPS-END"
)

// DumpFormatVersion is the stream format the writer emits.
const DumpFormatVersion = 2

// CCDateLayout parses cleartool %Nd timestamps; SvnDateLayout renders
// svn:date values. Cleartool gives no zone, so both are taken as UTC.
const (
	CCDateLayout  = "20060102.150405"
	SvnDateLayout = "2006-01-02T15:04:05.000000Z"
)

// fileReadChunkSize is the read size used while checksumming cached
// content and while streaming it into the dump.
const fileReadChunkSize = 512

// synthCreateStamp dates synthesized creation events for files that
// predate the recorded history of a branch.
const synthCreateStamp = "20000101.000001"
