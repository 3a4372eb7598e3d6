package cc2svn

import (
	"time"
)

// RevisionProps is the property block attached to every emitted revision:
// the standard svn:log, svn:author and svn:date, plus ClearcaseRevision
// recording the version id the revision was replayed from.
//
// One instance is reused across revisions. The same four keys are
// overwritten each time, so there is no need to reset between records.
type RevisionProps struct {
	properties *Properties
}

func NewRevisionProps() *RevisionProps {
	return &RevisionProps{properties: NewProperties()}
}

// SetMessage stores the commit message. Text that cannot be transcoded is
// replaced with an empty message rather than poisoning the dump.
func (rp *RevisionProps) SetMessage(trans *Transcoder, message string) {
	text, err := trans.UTF8(message)
	if err != nil {
		text = ""
	}
	rp.properties.Set("svn:log", text)
}

// SetAuthor stores the author, empty when transcoding fails.
func (rp *RevisionProps) SetAuthor(trans *Transcoder, author string) {
	text, err := trans.UTF8(author)
	if err != nil {
		text = ""
	}
	rp.properties.Set("svn:author", text)
}

func (rp *RevisionProps) SetDate(when time.Time) {
	rp.properties.Set("svn:date", when.Format(SvnDateLayout))
}

func (rp *RevisionProps) SetSourceRevision(revision string) {
	rp.properties.Set("ClearcaseRevision", revision)
}

// Apply fills the block from a record in one go, in the fixed key order
// the dump is expected to carry them.
func (rp *RevisionProps) Apply(trans *Transcoder, rec *ChangeRecord) {
	rp.SetMessage(trans, rec.Comment)
	rp.SetAuthor(trans, rec.Author)
	rp.SetDate(rec.Time)
	rp.SetSourceRevision(rec.Revision)
}

// Block exposes the underlying property block for encoding.
func (rp *RevisionProps) Block() *Properties {
	return rp.properties
}
