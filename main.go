package main

// cc2svn converts the history of a ClearCase VOB into a Subversion
// dump stream.
//
// The conversion runs in two passes. The replay pass reads the output
// of 'cleartool lshistory' in reverse (oldest event first) and turns
// each creation event into dump nodes: branches become branches/<name>,
// labelled versions are copied into tags/<label>, and file content is
// fetched once into an on-disk cache. The reconciliation pass then
// revisits every label through a temporary config spec to pick up
// versions that are no longer visible in the live view.
//
// Use "config.yml" to configure the tool:
//
//	vob-dir: /view/myview/vobs/src
//	cache-dir: /var/tmp/cc2svn-cache
//	dump-file: svndump.txt
//	history-file: history.txt
//	autoprops-file: config.autoprops
//
// An interrupted or failed run leaves its state behind and offers to
// resume the next time around.

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	cc2svn "github.com/FranzGames/cc2svn/lib"
)

// Session wires together everything one conversion run needs.
type Session struct {
	config *cc2svn.Config
	log    *logrus.Logger

	prompt cc2svn.Prompter
	trans  *cc2svn.Transcoder
	tool   cc2svn.Tool
	cache  *cc2svn.Cache
	dump   *cc2svn.DumpWriter
	conv   *cc2svn.Converter

	labels      []string
	branches    []string
	ignoredDirs []string
	autoProps   *cc2svn.AutoProps

	dumpFile *os.File
	gzWriter *gzip.Writer
	sink     io.Writer

	interrupt chan os.Signal
}

func NewSession(log *logrus.Logger) (session *Session, err error) {
	session = &Session{
		log:       log,
		prompt:    cc2svn.NewStdinPrompter(),
		interrupt: make(chan os.Signal, 1),
	}

	if session.config, err = cc2svn.NewConfig(*configFile); err != nil {
		return nil, err
	}

	config := session.config
	if session.labels, err = cc2svn.ReadList(config.LabelsFile); err != nil {
		return nil, err
	}
	if session.branches, err = cc2svn.ReadList(config.BranchesFile); err != nil {
		return nil, err
	}
	if session.ignoredDirs, err = cc2svn.ReadList(config.IgnoredDirsFile); err != nil {
		return nil, err
	}
	if session.autoProps, err = cc2svn.LoadAutoProps(config.AutoPropsFile); err != nil {
		return nil, err
	}
	if session.trans, err = cc2svn.NewTranscoder(config.Encoding); err != nil {
		return nil, err
	}
	if session.tool, err = cc2svn.NewCleartool(config.Cleartool, config.VobDir, log); err != nil {
		return nil, err
	}

	// Per-branch conversion walks the branch list, so it cannot run
	// without one.
	if config.ConfigSpecDir != "" && session.branches == nil {
		return nil, fmt.Errorf("%w: branches-file (required with config-spec-dir)", cc2svn.ErrMissingField)
	}

	session.cache = cc2svn.NewCache(config.CacheDir, config.VobDir, config.ZeroSizeCheck,
		session.tool, session.prompt, log)

	signal.Notify(session.interrupt, os.Interrupt)

	return session, nil
}

func main() {
	parseCommandLine()

	log := newLogger()

	session, err := NewSession(log)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}

	if err := session.run(); err != nil {
		log.Error(err)
		session.persistState()
		os.Exit(1)
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	switch {
	case *verbose:
		log.SetLevel(logrus.DebugLevel)
	case *quiet:
		log.SetLevel(logrus.WarnLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

func (s *Session) run() error {
	resume, err := s.prepareResume()
	if err != nil {
		return err
	}
	if err = s.openDump(); err != nil {
		return err
	}

	s.conv = cc2svn.NewConverter(s.dump, s.cache, s.trans, s.converterConfig(), s.prompt, s.log)
	if resume != nil {
		s.conv.RestoreSnapshot(resume)
	} else if err = s.conv.Bootstrap(); err != nil {
		return err
	}

	s.log.Infof("Processing ClearCase history, creating svn dump %s", s.config.DumpPath())

	if s.config.ConfigSpecDir != "" {
		for _, branch := range s.branches {
			if err = s.convertBranch(branch); err != nil {
				return err
			}
		}
	} else {
		if err = s.fetchHistory(""); err != nil {
			return err
		}
		if err = s.replayHistory(s.config.HistoryFile); err != nil {
			return err
		}
	}

	if err = s.conv.ReconcileLabels(s.tool); err != nil {
		return err
	}
	if err = s.closeDump(); err != nil {
		return err
	}

	// A completed conversion has nothing to resume.
	os.Remove(s.config.RunStateFile)

	s.log.Info("Completed")
	return nil
}

// converterConfig maps the file configuration onto the replay engine's
// knobs, minting a repository UUID when none is pinned.
func (s *Session) converterConfig() cc2svn.ConverterConfig {
	reposUUID := s.config.ReposUUID
	if reposUUID == "" {
		reposUUID = uuid.NewString()
	}
	since, _ := s.config.Since()

	return cc2svn.ConverterConfig{
		Labels:                s.labels,
		Branches:              s.branches,
		IgnoredDirs:           s.ignoredDirs,
		AutoProps:             s.autoProps,
		LinksBranch:           s.config.LinksBranch,
		UUID:                  reposUUID,
		Since:                 since,
		CreateTopDirs:         s.config.CreateTopDirs,
		TolerateMissingParent: s.config.TolerateChildBranch,
	}
}

// prepareResume offers to continue a previous run when both its state
// file and its partial dump are still around. Declining starts over.
func (s *Session) prepareResume() (*cc2svn.RunState, error) {
	state, err := cc2svn.LoadRunState(s.config.RunStateFile)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, nil
	}
	if _, serr := os.Stat(s.config.DumpPath()); serr != nil {
		return nil, nil
	}

	s.log.Infof("State file %s exists", s.config.RunStateFile)
	if s.prompt.YesNo("Continue previous run?") {
		return state, nil
	}

	if err = os.Remove(s.config.DumpPath()); err != nil {
		return nil, err
	}
	if err = os.Remove(s.config.RunStateFile); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Session) openDump() error {
	file, err := os.OpenFile(s.config.DumpPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return err
	}
	s.dumpFile = file
	s.sink = file
	if s.config.Compress {
		// Resuming appends a fresh gzip member; gunzip joins them.
		s.gzWriter = gzip.NewWriter(file)
		s.sink = s.gzWriter
	}
	s.dump = cc2svn.NewDumpWriter(s.sink, s.trans)
	return nil
}

func (s *Session) closeDump() error {
	if s.dumpFile == nil {
		return nil
	}

	err := s.dump.Flush()
	if s.gzWriter != nil {
		if gerr := s.gzWriter.Close(); err == nil {
			err = gerr
		}
		s.gzWriter = nil
	}
	if cerr := s.dumpFile.Close(); err == nil {
		err = cerr
	}
	s.dumpFile = nil
	return err
}

// persistState flushes whatever made it into the dump and saves the
// replay state so the next run can offer to resume.
func (s *Session) persistState() {
	s.closeDump()
	if s.conv == nil {
		return
	}
	if err := cc2svn.SaveRunState(s.config.RunStateFile, s.conv.Snapshot()); err != nil {
		s.log.Errorf("saving run state: %v", err)
		return
	}
	s.log.Infof("Run state saved to %s", s.config.RunStateFile)
}

// interrupted polls for Ctrl-C between records, so the current record
// is never cut off halfway.
func (s *Session) interrupted() error {
	select {
	case <-s.interrupt:
		return fmt.Errorf("%w: interrupted by user", cc2svn.ErrAborted)
	default:
		return nil
	}
}

// fetchHistory runs lshistory into the configured history file, reusing
// an existing listing if the operator wants it. An empty branch scopes
// nothing, giving the whole VOB's history.
func (s *Session) fetchHistory(branch string) error {
	filename := s.config.HistoryFile
	s.log.Infof("Loading CC history to %s", filename)

	if _, err := os.Stat(filename); err == nil {
		s.log.Infof("File %s already exists", filename)
		if s.prompt.YesNo("Use this file?") {
			return nil
		}
	}

	_, err := cc2svn.WithRetry(s.prompt, s.log, "cleartool lshistory", func() error {
		return s.tool.History(filename, branch)
	})
	return err
}

// replayHistory feeds the history file, oldest event first, through the
// converter. Corrupt lines are reported and skipped.
func (s *Session) replayHistory(filename string) error {
	hist, err := cc2svn.OpenHistoryFile(filename)
	if err != nil {
		return err
	}
	defer hist.Close()

	parser := cc2svn.NewHistoryParser()
	lines := hist.Lines()
	for {
		if err = s.interrupted(); err != nil {
			return err
		}
		line, ok := lines.Next()
		if !ok {
			return nil
		}

		rec, perr := parser.ParseLine(line)
		if perr != nil {
			s.log.Errorf("Wrong history line: %s", line)
			continue
		}
		if rec == nil {
			continue
		}
		if err = s.conv.Process(rec); err != nil {
			return err
		}
	}
}

// convertBranch replays one branch in an isolated view configuration.
// The branch's dump output goes to a temporary file first and is
// appended to the main dump once the branch completes.
func (s *Session) convertBranch(branch string) error {
	s.log.Infof("Get ClearCase history for branch %s", branch)

	if err := s.tool.SetConfigSpec(filepath.Join(s.config.ConfigSpecDir, branch+".txt")); err != nil {
		return err
	}
	viewFiles, err := listViewFiles(s.config.VobDir)
	if err != nil {
		return err
	}
	if err = s.recordBranchDone(branch); err != nil {
		return err
	}

	temp, err := os.Create(s.config.TmpDumpFile)
	if err != nil {
		return err
	}
	s.dump.SetSink(temp)

	if s.tool.BranchExists(branch) {
		err = s.convertLiveBranch(branch, viewFiles)
	} else {
		// No history at all: snapshot the whole view as fresh elements.
		err = s.synthesizeFiles(viewFiles, "/main/"+branch+"/0")
	}

	// Flushes the tail of the branch output into temp before switching.
	s.dump.SetSink(s.sink)

	if cerr := temp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return s.appendTempDump()
}

func (s *Session) convertLiveBranch(branch string, viewFiles []string) error {
	if err := s.fetchHistory(branch); err != nil {
		return err
	}

	known, zeroRev, err := s.scanBranchHistory(s.config.HistoryFile, branch)
	if err != nil {
		return err
	}

	// Files visible in the branch view but absent from its history were
	// branched without ever being changed; invent their creation.
	var missing []string
	for _, filename := range viewFiles {
		if !known[filename] {
			missing = append(missing, filename)
		}
	}
	if err = s.synthesizeFiles(missing, zeroRev); err != nil {
		return err
	}

	if err = s.replayHistory(s.config.HistoryFile); err != nil {
		return err
	}
	return os.Remove(s.config.HistoryFile)
}

// scanBranchHistory reads a branch listing once to learn which elements
// the branch versions, and derives the version id branched files start
// from.
func (s *Session) scanBranchHistory(filename, branch string) (map[string]bool, string, error) {
	hist, err := cc2svn.OpenHistoryFile(filename)
	if err != nil {
		return nil, "", err
	}
	defer hist.Close()

	known := make(map[string]bool)
	zeroRev := ""

	parser := cc2svn.NewHistoryParser()
	lines := hist.Lines()
	for {
		line, ok := lines.Next()
		if !ok {
			break
		}
		rec, perr := parser.ParseLine(line)
		if perr != nil || rec == nil {
			continue
		}
		if zeroRev == "" {
			parts := append(append([]string{}, rec.BranchNames...), "0")
			zeroRev = "/" + strings.Join(parts, "/")
		}
		known[rec.Path] = true
	}

	if zeroRev == "" {
		zeroRev = "/main/" + branch + "/0"
	}
	return known, zeroRev, nil
}

// synthesizeFiles invents creation records for files the branch history
// never mentions, seeding the cache straight from the view.
func (s *Session) synthesizeFiles(files []string, zeroRev string) error {
	parser := cc2svn.NewHistoryParser()
	for _, filename := range files {
		if err := s.interrupted(); err != nil {
			return err
		}
		if cc2svn.HasOneOfPrefixes(filename, s.ignoredDirs) {
			continue
		}
		if _, err := s.cache.Populate(filename, zeroRev); err != nil {
			return err
		}
		if err := s.conv.Process(parser.SynthesizeCreate(filename, zeroRev)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) recordBranchDone(branch string) error {
	file, err := os.OpenFile(s.config.BranchHistoryFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return err
	}
	if _, err = fmt.Fprintln(file, branch); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (s *Session) appendTempDump() error {
	temp, err := os.Open(s.config.TmpDumpFile)
	if err != nil {
		return err
	}
	defer temp.Close()

	_, err = io.Copy(s.sink, temp)
	return err
}

// listViewFiles walks the mounted view and returns every file path
// relative to the view root, slash separated.
func listViewFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, rerr := filepath.Rel(root, path)
			if rerr != nil {
				return rerr
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	return files, err
}
