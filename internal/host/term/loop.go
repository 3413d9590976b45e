// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd014-hosts R2;
//
//	docs/ARCHITECTURE § Hosts.
package term

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/petar-djukic/go-edit/internal/review"
	"github.com/petar-djukic/go-edit/pkg/types"
)

const helpText = `  a  accept focused hunk
  r  revert focused hunk
  A  accept all remaining hunks
  n  next hunk
  p  previous hunk
  c  cancel review (restore original content)
  q  close review
  ?  show this help`

// Loop reads single-letter commands from a reader and drives a review
// session until it finalizes.
type Loop struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewLoop returns a Loop reading commands from in and prompting on out.
func NewLoop(in io.Reader, out io.Writer) *Loop {
	return &Loop{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Run prompts for commands until the session leaves the reviewing phase.
// EOF on the command stream closes the session.
func (l *Loop) Run(sess *review.Session) error {
	for sess.Phase() == types.Reviewing {
		fmt.Fprint(l.out, "review> ")
		if !l.in.Scan() {
			if err := l.in.Err(); err != nil {
				sess.Close()
				return fmt.Errorf("reading review commands: %w", err)
			}
			if err := sess.Close(); err != nil {
				return err
			}
			break
		}

		var err error
		switch strings.TrimSpace(l.in.Text()) {
		case "a":
			err = sess.Accept()
		case "r":
			err = sess.Revert()
		case "A":
			err = sess.AcceptAll()
		case "n":
			err = sess.Next()
		case "p":
			err = sess.Prev()
		case "c":
			err = sess.Cancel()
		case "q":
			err = sess.Close()
		case "?", "h":
			fmt.Fprintln(l.out, helpText)
		case "":
		default:
			fmt.Fprintln(l.out, faintStyle.Render("unknown command, ? for help"))
		}
		if err != nil {
			fmt.Fprintln(l.out, removedStyle.Render(err.Error()))
		}
	}

	fmt.Fprintln(l.out, faintStyle.Render("review "+sess.Phase().String()))
	return nil
}
