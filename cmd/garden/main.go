// Garden CLI - live-coding performance front end for the sound-garden engine
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gordonklaus/portaudio"
	"github.com/mitchellh/go-homedir"
	"github.com/peterh/liner"
	"github.com/tliron/commonlog"

	"github.com/codeblessmax/sound-garden-0x2/audio"
	"github.com/codeblessmax/sound-garden-0x2/compiler"
	"github.com/codeblessmax/sound-garden-0x2/engine"
	"github.com/codeblessmax/sound-garden-0x2/manifest"
	"github.com/codeblessmax/sound-garden-0x2/server"
	"github.com/codeblessmax/sound-garden-0x2/session"
)

const historyFile = ".garden_history"

func main() {
	chdir := flag.String("C", "", "Change to dir before locating garden.toml")
	lspMode := flag.Bool("lsp", false, "Run the language server on stdio (no audio)")
	silent := flag.Bool("silent", false, "No audio output (compile/journal only)")
	record := flag.String("record", "", "Tee output into a WAV file")
	srOverride := flag.Int("sr", 0, "Override the sample rate")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: garden [options] [session.json]\n\n")
		fmt.Fprintf(os.Stderr, "Starts a live-coding session: every line you enter is a whole program,\n")
		fmt.Fprintf(os.Stderr, "compiled and swapped into the running sound without a glitch.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  garden                      # Start in the current project\n")
		fmt.Fprintf(os.Stderr, "  garden -C ~/sets/friday     # Use that project's garden.toml\n")
		fmt.Fprintf(os.Stderr, "  garden -record take.wav     # Capture the performance\n")
		fmt.Fprintf(os.Stderr, "  garden -silent set.json     # Check a session without a sound card\n")
		fmt.Fprintf(os.Stderr, "  garden -lsp                 # Language server for editors\n")
		fmt.Fprintf(os.Stderr, "\nREPL commands:\n")
		fmt.Fprintf(os.Stderr, "  :help [op]  :ops  :prog  :save  :log [n]  :revert id  :quit\n")
	}
	flag.Parse()

	if *chdir != "" {
		if err := os.Chdir(*chdir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	rate := m.Audio.SampleRate
	if *srOverride > 0 {
		rate = *srOverride
	}

	if *lspMode {
		commonlog.Configure(1, nil)
		if err := server.NewLSP(rate).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	eng := engine.New(rate)

	journalPath := m.JournalPath()
	if env := os.Getenv("GARDEN_DB"); env != "" {
		journalPath = env
	}
	journal, err := session.OpenJournal(journalPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer journal.Close()
	eng.AttachJournal(journal)

	sessionPath := m.SessionPath()
	if flag.NArg() > 0 {
		sessionPath = flag.Arg(0)
	}
	sess, err := session.Load(sessionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(sess.Ops) > 0 {
		if err := eng.Apply(sess.Ops); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: session did not compile: %v\n", err)
		} else {
			fmt.Printf("Resumed %s (%d ops)\n", sessionPath, len(sess.Ops))
		}
	}

	var src audio.FrameSource = eng
	var recorder *audio.Recorder
	if *record != "" {
		recorder = audio.NewRecorder(*record, rate)
		src = audio.Tee(eng, recorder)
	}

	if !*silent {
		if err := portaudio.Initialize(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer portaudio.Terminate()

		out, err := audio.NewOutput(src, rate, m.Audio.BufferSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := out.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer out.Close()
		defer out.Stop()
	}

	repl(eng, journal, sess, sessionPath)

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: recording not saved: %v\n", err)
		} else {
			fmt.Printf("Recorded %d frames to %s\n", recorder.Frames(), *record)
		}
	}
	if err := sess.Save(sessionPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: session not saved: %v\n", err)
	}
}

// repl runs the interactive loop until :quit or EOF. The session's op
// slice tracks the last successfully applied program so it can be
// saved on the way out.
func repl(eng *engine.Engine, journal *session.Journal, sess *session.Session, sessionPath string) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completeOps)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Printf("sound garden @ %d Hz. Type a program, or :help.\n", eng.SampleRate())

	for {
		line, err := ln.Prompt("garden> ")
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			if quit := command(eng, journal, sess, sessionPath, line); quit {
				return
			}
			continue
		}

		ops := retokenize(eng.Ops(), strings.Fields(line))
		if err := eng.Apply(ops); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		sess.Ops = eng.Ops()
	}
}

// command dispatches a :-prefixed REPL command. Returns true on :quit.
func command(eng *engine.Engine, journal *session.Journal, sess *session.Session, sessionPath string, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true

	case ":help", ":h":
		if len(fields) > 1 {
			if help, ok := compiler.Help()[fields[1]]; ok {
				fmt.Printf("%s  %s\n", fields[1], help)
			} else {
				fmt.Printf("No such operator %q; :ops lists them all\n", fields[1])
			}
			return false
		}
		fmt.Print("Enter a program as space-separated operators, e.g.  sine:110 0.4 *\n")
		fmt.Print("Editing a line keeps each token's state by position.\n\n")
		fmt.Print("  :help [op]   this text, or one operator's usage\n")
		fmt.Print("  :ops         list every operator by group\n")
		fmt.Print("  :prog        disassemble the running program\n")
		fmt.Print("  :save        write the session file now\n")
		fmt.Print("  :log [n]     show the latest journal revisions\n")
		fmt.Print("  :revert id   re-apply a journaled revision\n")
		fmt.Print("  :quit        save and exit\n")

	case ":ops":
		for _, g := range compiler.OpGroups() {
			fmt.Printf("%-12s %s\n", g.Name, strings.Join(g.Ops, " "))
		}

	case ":prog":
		p := eng.Program()
		if p == nil {
			fmt.Println("No program loaded")
			return false
		}
		fmt.Print(p.Disassemble())

	case ":save":
		sess.Ops = eng.Ops()
		if err := sess.Save(sessionPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			fmt.Printf("Saved %s\n", sessionPath)
		}

	case ":log":
		limit := 10
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				limit = n
			}
		}
		revs, err := journal.List(limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		for _, r := range revs {
			fmt.Printf("%4d  %s  %s\n", r.ID, r.CreatedAt.Local().Format("15:04:05"), r.Source)
		}

	case ":revert":
		if len(fields) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: :revert id")
			return false
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: bad revision id %q\n", fields[1])
			return false
		}
		ops, err := journal.Ops(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		if err := eng.Apply(ops); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		sess.Ops = eng.Ops()
		fmt.Printf("Reverted to revision %d: %s\n", id, engine.SourceText(ops))

	default:
		fmt.Printf("Unknown command %s; :help lists commands\n", fields[0])
	}
	return false
}

// retokenize matches the new line's tokens to the previous program by
// position: token i keeps token i's identity, so editing a token in
// place preserves its operator state. Inserting or removing a token
// shifts identities after the edit point; that is the cost of not
// having a structural editor own the identities.
func retokenize(prev []compiler.TextOp, fields []string) []compiler.TextOp {
	ops := make([]compiler.TextOp, len(fields))
	for i, f := range fields {
		if i < len(prev) {
			ops[i] = compiler.TextOp{ID: prev[i].ID, Text: f}
		} else {
			ops[i] = compiler.NewTextOp(f)
		}
	}
	return ops
}

// completeOps completes the operator name at the end of the line.
func completeOps(line string) []string {
	i := strings.LastIndexAny(line, " \t")
	head, word := line[:i+1], line[i+1:]
	if word == "" {
		return nil
	}
	var out []string
	for _, g := range compiler.OpGroups() {
		for _, name := range g.Ops {
			if strings.HasPrefix(name, word) {
				out = append(out, head+name)
			}
		}
	}
	return out
}

func historyPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}
