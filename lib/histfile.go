package cc2svn

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

// HistoryFile is a cleartool history listing mapped into memory so it can
// be walked backwards without loading it wholesale or seeking around with
// buffered readers.
type HistoryFile struct {
	Path string
	Data mmap.MMap

	reader *ReverseLineReader
}

// OpenHistoryFile maps the given file and prepares a reverse reader over
// it. An empty file maps to an empty reader rather than an error, since a
// branch with no recorded events produces an empty listing.
func OpenHistoryFile(path string) (hf *HistoryFile, err error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	hf = &HistoryFile{Path: path}

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > 0 {
		if hf.Data, err = mmap.Map(file, mmap.RDONLY, 0); err != nil {
			return nil, err
		}
	}

	hf.reader = NewReverseLineReader(hf.Data)

	return hf, nil
}

// Lines returns the reverse reader over the file. The same reader is
// handed out each time; use Reset on it to walk the file again.
func (hf *HistoryFile) Lines() *ReverseLineReader {
	return hf.reader
}

// Close releases resources held by the file. Note: this invalidates the
// reader, since it releases the mmap the reader walks.
func (hf *HistoryFile) Close() error {
	hf.reader.Close()
	if hf.Data == nil {
		return nil
	}
	data := hf.Data
	hf.Data = nil
	return data.Unmap()
}
