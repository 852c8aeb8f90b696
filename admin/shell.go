package admin

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

const prompt = "forumapp> "

var errUsage = errors.New("usage")

type command struct {
	usage string
	help  string
	args  int
	run   func(s *Session, out io.Writer, args []string) error
}

var commands = map[string]command{
	"names":      {"names", "list the objects this session exposes", 0, (*Session).cmdNames},
	"users":      {"users", "list users", 0, (*Session).cmdUsers},
	"adduser":    {"adduser <user> <password>", "create an account, including reserved admin names", 2, (*Session).cmdAddUser},
	"channels":   {"channels", "list channels", 0, (*Session).cmdChannels},
	"threads":    {"threads <channel>", "list threads of a channel", 1, (*Session).cmdThreads},
	"comments":   {"comments <channel> <thread>", "list comments of a thread", 2, (*Session).cmdComments},
	"ban":        {"ban <user>", "ban a user site-wide", 1, (*Session).cmdBan},
	"unban":      {"unban <user>", "lift a site-wide ban", 1, (*Session).cmdUnban},
	"deluser":    {"deluser <user>", "delete a user, passing owned channels to moderators", 1, (*Session).cmdDelUser},
	"delchannel": {"delchannel <channel>", "delete a channel with all threads and comments", 1, (*Session).cmdDelChannel},
	"stats":      {"stats", "show forum totals", 0, (*Session).cmdStats},
}

// Run reads commands from in until EOF or exit. Command errors are printed
// and do not stop the loop; only read errors are returned.
func (s *Session) Run(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "forumapp admin shell. Type 'help' for commands.")
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		quit, err := s.Exec(scanner.Text(), out)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Exec runs a single command line. quit is true for exit/quit.
func (s *Session) Exec(line string, out io.Writer) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := fields[0], fields[1:]
	switch name {
	case "exit", "quit":
		return true, nil
	case "help":
		s.cmdHelp(out)
		return false, nil
	}
	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q, try 'help'", name)
	}
	if len(args) != cmd.args {
		return false, fmt.Errorf("%w: %s", errUsage, cmd.usage)
	}
	return false, cmd.run(s, out, args)
}

func (s *Session) cmdHelp(out io.Writer) {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(out, "  %-28s %s\n", commands[n].usage, commands[n].help)
	}
	fmt.Fprintf(out, "  %-28s %s\n", "exit", "leave the shell")
}

func (s *Session) cmdNames(out io.Writer, _ []string) error {
	for _, n := range s.Names() {
		fmt.Fprintln(out, n)
	}
	return nil
}

func (s *Session) cmdUsers(out io.Writer, _ []string) error {
	users, total, err := s.Users.List(1, 100)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-6s  %-32s  %-6s\n", "ID", "Username", "Banned")
	for _, u := range users {
		fmt.Fprintf(out, "%-6d  %-32s  %-6t\n", u.ID, u.Username, u.Banned)
	}
	fmt.Fprintf(out, "%d user(s)\n", total)
	return nil
}

func (s *Session) cmdChannels(out io.Writer, _ []string) error {
	channels, total, err := s.Channels.List(1, 100)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-32s  %-20s  %s\n", "Channel", "Owner", "Moderators")
	for _, ch := range channels {
		owner := ""
		if ch.Owner != nil {
			owner = ch.Owner.Username
		}
		fmt.Fprintf(out, "%-32s  %-20s  %s\n", ch.ChannelName, owner, strings.Join(ch.Moderators, ","))
	}
	fmt.Fprintf(out, "%d channel(s)\n", total)
	return nil
}

func (s *Session) cmdThreads(out io.Writer, args []string) error {
	threads, total, err := s.Threads.List(args[0], 1, 100)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-6s  %-40s  %s\n", "ID", "Thread", "Owner")
	for _, th := range threads {
		owner := ""
		if th.Owner != nil {
			owner = th.Owner.Username
		}
		fmt.Fprintf(out, "%-6d  %-40s  %s\n", th.Number, th, owner)
	}
	fmt.Fprintf(out, "%d thread(s)\n", total)
	return nil
}

func (s *Session) cmdComments(out io.Writer, args []string) error {
	thread, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid thread id %q", args[1])
	}
	comments, total, err := s.Comments.List(args[0], thread, 1, 100)
	if err != nil {
		return err
	}
	for _, c := range comments {
		author := "[deleted]"
		if c.Owner != nil {
			author = c.Owner.Username
		}
		fmt.Fprintf(out, "#%-5d %-20s %s\n", c.Number, author, c)
	}
	fmt.Fprintf(out, "%d comment(s)\n", total)
	return nil
}

func (s *Session) cmdAddUser(out io.Writer, args []string) error {
	u, err := s.Users.Create(args[0], "", args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created user %s (id %d)\n", u, u.ID)
	return nil
}

func (s *Session) cmdBan(out io.Writer, args []string) error {
	if _, err := s.Users.SetBanned(args[0], true); err != nil {
		return err
	}
	fmt.Fprintf(out, "banned %s\n", args[0])
	return nil
}

func (s *Session) cmdUnban(out io.Writer, args []string) error {
	if _, err := s.Users.SetBanned(args[0], false); err != nil {
		return err
	}
	fmt.Fprintf(out, "unbanned %s\n", args[0])
	return nil
}

func (s *Session) cmdDelUser(out io.Writer, args []string) error {
	u, err := s.Users.GetByUsername(args[0])
	if err != nil {
		return err
	}
	if err := s.Users.Delete(u.ID); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted user %s\n", u)
	return nil
}

func (s *Session) cmdDelChannel(out io.Writer, args []string) error {
	if err := s.Channels.Delete(s.Actor, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted channel %s\n", args[0])
	return nil
}

func (s *Session) cmdStats(out io.Writer, _ []string) error {
	sum, err := s.Stats.Summary()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "users=%d channels=%d threads=%d comments=%d page_views_today=%d\n",
		sum.Users, sum.Channels, sum.Threads, sum.Comments, sum.PageViewsToday)
	return nil
}
