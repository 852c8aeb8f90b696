package services

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cppla/forumapp/config"
	"github.com/cppla/forumapp/migrations"
	"github.com/cppla/forumapp/models"
	"github.com/cppla/forumapp/utils"
)

func TestMain(m *testing.M) {
	utils.PasswordCost = bcrypt.MinCost
	config.Set(config.AppConfig{JWTSecret: "test"})
	os.Exit(m.Run())
}

type fixture struct {
	db       *gorm.DB
	users    *UserService
	channels *ChannelService
	threads  *ThreadService
	comments *CommentService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := config.OpenDatabase(config.AppConfig{DBDriver: "sqlite", DatabaseURI: "file::memory:", LogLevel: "silent"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	_, err = migrations.New(db).Up()
	require.NoError(t, err)
	return &fixture{
		db:       db,
		users:    NewUserService(db),
		channels: NewChannelService(db),
		threads:  NewThreadService(db),
		comments: NewCommentService(db),
	}
}

// user inserts an account without a password, the way an operator would.
func (f *fixture) user(t *testing.T, name string) Actor {
	t.Helper()
	u := models.User{Username: name}
	require.NoError(t, f.db.Create(&u).Error)
	return Actor{UserID: u.ID, Username: u.Username}
}

func (f *fixture) channel(t *testing.T, a Actor, name string) *models.Channel {
	t.Helper()
	ch, err := f.channels.Create(a, name, "testdesc")
	require.NoError(t, err)
	return ch
}

func (f *fixture) thread(t *testing.T, a Actor, channel string) *models.Thread {
	t.Helper()
	th, err := f.threads.Create(a, channel, "thread123", "testdesc")
	require.NoError(t, err)
	return th
}

func (f *fixture) comment(t *testing.T, a Actor, channel string, thread int, text string) *models.Comment {
	t.Helper()
	c, err := f.comments.Create(a, channel, thread, text, nil)
	require.NoError(t, err)
	return c
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.FieldNames()
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := setup(t)

	u, err := f.users.Register("alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.EqualValues(t, 1, f.count(t, &models.UserSettings{}, "user_id = ?", u.ID))

	got, err := f.users.Authenticate("alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.users.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.users.Authenticate("nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.users.SetBanned("alice", true)
	require.NoError(t, err)
	_, err = f.users.Authenticate("alice", "secret1")
	assert.ErrorIs(t, err, ErrBanned)
}

func TestRegisterValidation(t *testing.T) {
	f := setup(t)
	_, err := f.users.Register("alice", "", "secret1")
	require.NoError(t, err)

	cases := []struct {
		name, username, email, password, field string
	}{
		{"duplicate", "alice", "", "secret1", "username"},
		{"too short", "a", "", "secret1", "username"},
		{"bad chars", "al ice", "", "secret1", "username"},
		{"short password", "bob", "", "123", "password"},
		{"email", "bob", "not-an-email", "secret1", "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.users.Register(tc.username, tc.email, tc.password)
			assert.Equal(t, []string{tc.field}, fieldsOf(t, err))
		})
	}
}

func TestUniqueUser(t *testing.T) {
	f := setup(t)
	f.user(t, "randomuser91387245")
	f.user(t, "asfghjguser")

	err := (&models.User{Username: "randomuser91387245"}).ValidateUnique(f.db)
	assert.Equal(t, []string{"username"}, fieldsOf(t, err))
	assert.NoError(t, (&models.User{Username: "fresh"}).ValidateUnique(f.db))
}

func TestUserSettingsString(t *testing.T) {
	f := setup(t)
	a := f.user(t, "randomuser91387245")

	s, err := f.users.Settings(a.UserID)
	require.NoError(t, err)
	assert.Equal(t, "randomuser91387245", s.String())
	assert.Equal(t, DefaultPageSize, s.PageSize)

	again, err := f.users.Settings(a.UserID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, again.ID)
}

func TestUpdateSettings(t *testing.T) {
	f := setup(t)
	a := f.user(t, "alice")
	sig, size := "hello", 25

	s, err := f.users.UpdateSettings(a.UserID, SettingsUpdate{Signature: &sig, PageSize: &size})
	require.NoError(t, err)
	assert.Equal(t, "hello", s.Signature)

	var stored models.UserSettings
	require.NoError(t, f.db.Where("user_id = ?", a.UserID).First(&stored).Error)
	assert.Equal(t, 25, stored.PageSize)

	bad := 0
	_, err = f.users.UpdateSettings(a.UserID, SettingsUpdate{PageSize: &bad})
	assert.Equal(t, []string{"page_size"}, fieldsOf(t, err))
	avatar := "javascript:alert(1)"
	_, err = f.users.UpdateSettings(a.UserID, SettingsUpdate{AvatarURL: &avatar})
	assert.Equal(t, []string{"avatar_url"}, fieldsOf(t, err))
}

func TestChannelCreateListDelete(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")

	channels, total, err := f.channels.List(1, 10)
	require.NoError(t, err)
	assert.Empty(t, channels)
	assert.Zero(t, total)

	f.channel(t, owner, "Test-channel-123456789")
	f.channel(t, owner, "Test-cha")

	channels, total, err = f.channels.List(1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, channels, 2)
	assert.Equal(t, "Test-cha", channels[0].ChannelName)
	require.NotNil(t, channels[0].Owner)
	assert.Equal(t, "owner", channels[0].Owner.Username)

	require.NoError(t, f.channels.Delete(owner, "Test-channel-123456789"))
	require.NoError(t, f.channels.Delete(owner, "Test-cha"))
	_, total, err = f.channels.List(1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestChannelCreateRules(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")

	_, err := f.channels.Create(Actor{}, "anon", "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.channels.Create(owner, "has space", "")
	assert.Equal(t, []string{"channel_name"}, fieldsOf(t, err))

	f.channel(t, owner, "general")
	_, err = f.channels.Create(owner, "general", "")
	assert.Equal(t, []string{"channel_name"}, fieldsOf(t, err))

	_, err = f.users.SetBanned("owner", true)
	require.NoError(t, err)
	_, err = f.channels.Create(owner, "another", "")
	assert.ErrorIs(t, err, ErrBanned)
}

func TestUniqueChannel(t *testing.T) {
	f := setup(t)
	u1 := f.user(t, "owner")
	u2 := f.user(t, "other")
	f.channel(t, u1, "Test-channel-123456789")
	f.channel(t, u2, "Test-cha")

	c3 := models.Channel{ChannelName: "Test-channel-123456789", OwnerID: u1.UserID}
	c4 := models.Channel{ChannelName: "Test-cha", OwnerID: u1.UserID}
	assert.Equal(t, []string{"channel_name"}, fieldsOf(t, c3.ValidateUnique(f.db)))
	assert.Equal(t, []string{"channel_name"}, fieldsOf(t, c4.ValidateUnique(f.db)))
}

func TestChannelUpdatePermissions(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")
	mod := f.user(t, "mod")
	stranger := f.user(t, "stranger")
	f.channel(t, owner, "general")

	desc := "new"
	_, err := f.channels.Update(stranger, "general", ChannelUpdate{Description: &desc})
	assert.ErrorIs(t, err, ErrForbidden)

	mods := []string{"mod", "owner", "mod"}
	ch, err := f.channels.Update(owner, "general", ChannelUpdate{Description: &desc, Moderators: &mods})
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"mod"}, ch.Moderators)

	stored, err := f.channels.Get("general")
	require.NoError(t, err)
	assert.Equal(t, "new", stored.Description)
	assert.True(t, f.channels.CanModerate(mod, stored))
	assert.False(t, f.channels.CanModerate(stranger, stored))
	assert.True(t, f.channels.CanModerate(Actor{Admin: true}, stored))

	// moderators moderate but do not manage
	_, err = f.channels.Update(mod, "general", ChannelUpdate{Description: &desc})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.channels.Delete(mod, "general"), ErrForbidden)

	ghosts := []string{"ghost"}
	_, err = f.channels.Update(owner, "general", ChannelUpdate{Moderators: &ghosts})
	assert.Equal(t, []string{"moderators"}, fieldsOf(t, err))

	_, err = f.channels.Get("missing")
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestChannelBan(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")
	troll := f.user(t, "troll")
	bystander := f.user(t, "bystander")
	f.channel(t, owner, "general")
	th := f.thread(t, owner, "general")

	_, err := f.channels.Ban(bystander, "general", "troll")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.channels.Ban(owner, "general", "owner")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.channels.Ban(owner, "general", "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	ch, err := f.channels.Ban(owner, "general", "troll")
	require.NoError(t, err)
	assert.True(t, ch.BannedUsers.Contains("troll"))

	_, err = f.threads.Create(troll, "general", "spam", "")
	assert.ErrorIs(t, err, ErrBanned)
	_, err = f.comments.Create(troll, "general", th.Number, "spam", nil)
	assert.ErrorIs(t, err, ErrBanned)

	_, err = f.channels.Unban(owner, "general", "troll")
	require.NoError(t, err)
	f.comment(t, troll, "general", th.Number, "sorry")
}

func TestSiteBanBlocksPosting(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")
	troll := f.user(t, "troll")
	f.channel(t, owner, "general")

	_, err := f.users.SetBanned("troll", true)
	require.NoError(t, err)
	_, err = f.threads.Create(troll, "general", "spam", "")
	assert.ErrorIs(t, err, ErrBanned)
}

func TestSiteBanBlocksModeration(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")
	mod := f.user(t, "mod")
	author := f.user(t, "author")
	f.channel(t, owner, "general")
	mods := []string{"mod"}
	_, err := f.channels.Update(owner, "general", ChannelUpdate{Moderators: &mods})
	require.NoError(t, err)
	th := f.thread(t, author, "general")
	c := f.comment(t, author, "general", th.Number, "hello")

	_, err = f.users.SetBanned("mod", true)
	require.NoError(t, err)
	assert.ErrorIs(t, f.comments.Delete(mod, "general", th.Number, c.Number), ErrBanned)
	assert.ErrorIs(t, f.threads.Delete(mod, "general", th.Number), ErrBanned)
	_, err = f.channels.Ban(mod, "general", "author")
	assert.ErrorIs(t, err, ErrBanned)
	_, err = f.channels.Unban(mod, "general", "author")
	assert.ErrorIs(t, err, ErrBanned)
	ch, err := f.channels.Get("general")
	require.NoError(t, err)
	assert.False(t, f.channels.CanModerate(mod, ch))

	_, err = f.users.SetBanned("author", true)
	require.NoError(t, err)
	assert.ErrorIs(t, f.threads.Delete(author, "general", th.Number), ErrBanned)

	_, err = f.users.SetBanned("owner", true)
	require.NoError(t, err)
	desc := "taken over"
	_, err = f.channels.Update(owner, "general", ChannelUpdate{Description: &desc})
	assert.ErrorIs(t, err, ErrBanned)
	assert.ErrorIs(t, f.channels.Delete(owner, "general"), ErrBanned)
	assert.ErrorIs(t, f.comments.Delete(owner, "general", th.Number, c.Number), ErrBanned)

	assert.EqualValues(t, 1, f.count(t, &models.Channel{}, ""))
	assert.EqualValues(t, 1, f.count(t, &models.Thread{}, ""))
	assert.EqualValues(t, 1, f.count(t, &models.Comment{}, ""))

	// the shell's system actor is not an account and is never banned
	assert.NoError(t, f.comments.Delete(System(), "general", th.Number, c.Number))
}

func TestStaleActorCannotModerate(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")
	oldBob := f.user(t, "bob")
	f.user(t, "carol")
	f.channel(t, owner, "general")
	th := f.thread(t, owner, "general")
	first := f.comment(t, owner, "general", th.Number, "one")
	second := f.comment(t, owner, "general", th.Number, "two")

	require.NoError(t, f.users.Delete(oldBob.UserID))
	newBob := f.user(t, "bob")
	mods := []string{"bob"}
	_, err := f.channels.Update(owner, "general", ChannelUpdate{Moderators: &mods})
	require.NoError(t, err)

	assert.ErrorIs(t, f.comments.Delete(oldBob, "general", th.Number, first.Number), ErrUnauthenticated)
	_, err = f.channels.Ban(oldBob, "general", "owner")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.threads.Create(oldBob, "general", "ghost", "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	ch, err := f.channels.Get("general")
	require.NoError(t, err)
	assert.False(t, f.channels.CanModerate(oldBob, ch))

	// a claimed name that does not belong to the account id is not trusted
	forged := Actor{UserID: owner.UserID, Username: "bob"}
	assert.ErrorIs(t, f.comments.Delete(forged, "general", th.Number, first.Number), ErrUnauthenticated)

	assert.NoError(t, f.comments.Delete(newBob, "general", th.Number, second.Number))
	assert.EqualValues(t, 1, f.count(t, &models.Comment{}, ""))
}

func TestChannelDescriptionLength(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")
	long := strings.Repeat("x", models.MaxChannelDescriptionLen+1)

	_, err := f.channels.Create(owner, "general", long)
	assert.Equal(t, []string{"description"}, fieldsOf(t, err))

	f.channel(t, owner, "general")
	_, err = f.channels.Update(owner, "general", ChannelUpdate{Description: &long})
	assert.Equal(t, []string{"description"}, fieldsOf(t, err))
	stored, err := f.channels.Get("general")
	require.NoError(t, err)
	assert.Equal(t, "testdesc", stored.Description)
}

func TestRegisterReservesAdminNames(t *testing.T) {
	config.Set(config.AppConfig{JWTSecret: "test", AdminUsernames: []string{"root"}})
	t.Cleanup(func() { config.Set(config.AppConfig{JWTSecret: "test"}) })
	f := setup(t)

	_, err := f.users.Register("root", "", "secret1")
	assert.Equal(t, []string{"username"}, fieldsOf(t, err))
	assert.Zero(t, f.count(t, &models.User{}, ""))

	u, err := f.users.Create("root", "", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "root", u.Username)

	_, err = f.users.Register("Root", "", "secret1")
	assert.NoError(t, err)
}

func TestThreadNumbering(t *testing.T) {
	f := setup(t)
	u1 := f.user(t, "owner")
	u2 := f.user(t, "other")
	f.channel(t, u1, "channelfortestthread")
	f.channel(t, u2, "channelf")

	t1 := f.thread(t, u1, "channelfortestthread")
	t2 := f.thread(t, u1, "channelfortestthread")
	t3 := f.thread(t, u2, "channelf")
	t4 := f.thread(t, u1, "channelf")

	assert.Equal(t, 0, t1.Number)
	assert.Equal(t, 1, t2.Number)
	assert.Equal(t, t1.Number, t3.Number)
	assert.Equal(t, t2.Number, t4.Number)
	assert.Equal(t, "thread123", t1.String())

	t5 := models.Thread{ChannelID: t1.ChannelID, Number: 0, OwnerID: u2.UserID, ThreadName: "aa"}
	assert.Equal(t, []string{"channel", "thread_id"}, fieldsOf(t, t5.ValidateUnique(f.db)))
}

func TestThreadNumbersStayDenseAfterDeletingTheLast(t *testing.T) {
	f := setup(t)
	u := f.user(t, "owner")
	f.channel(t, u, "general")
	f.thread(t, u, "general")
	last := f.thread(t, u, "general")

	require.NoError(t, f.threads.Delete(u, "general", last.Number))
	again := f.thread(t, u, "general")
	assert.Equal(t, 1, again.Number)
}

func TestThreadListAndGet(t *testing.T) {
	f := setup(t)
	u := f.user(t, "owner")
	f.channel(t, u, "general")

	threads, total, err := f.threads.List("general", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, threads)
	assert.Zero(t, total)

	first := f.thread(t, u, "general")
	second, err := f.threads.Create(u, "general", "daerhttset", "")
	require.NoError(t, err)

	threads, total, err = f.threads.List("general", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, threads, 2)
	assert.Equal(t, second.Number, threads[0].Number)

	got, err := f.threads.Get("general", first.Number)
	require.NoError(t, err)
	assert.Equal(t, "thread123", got.ThreadName)
	assert.Equal(t, "general", got.Channel.ChannelName)

	_, err = f.threads.Get("general", 99)
	assert.ErrorIs(t, err, ErrThreadNotFound)
	_, _, err = f.threads.List("missing", 1, 10)
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestThreadDeleteKeepsChannelDropsComments(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")
	f.channel(t, owner, "channelfortestthread")
	th := f.thread(t, owner, "channelfortestthread")
	f.comment(t, owner, "channelfortestthread", th.Number, "text")

	require.NoError(t, f.threads.Delete(owner, "channelfortestthread", th.Number))

	assert.EqualValues(t, 1, f.count(t, &models.User{}, "username = ?", "owner"))
	assert.EqualValues(t, 1, f.count(t, &models.Channel{}, "channel_name = ?", "channelfortestthread"))
	assert.Zero(t, f.count(t, &models.Thread{}, ""))
	assert.Zero(t, f.count(t, &models.Comment{}, ""))
}

func TestThreadDeletePermissions(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")
	author := f.user(t, "author")
	mod := f.user(t, "mod")
	stranger := f.user(t, "stranger")
	f.channel(t, owner, "general")
	mods := []string{"mod"}
	_, err := f.channels.Update(owner, "general", ChannelUpdate{Moderators: &mods})
	require.NoError(t, err)

	a := f.thread(t, author, "general")
	b := f.thread(t, author, "general")
	c := f.thread(t, author, "general")

	assert.ErrorIs(t, f.threads.Delete(stranger, "general", a.Number), ErrForbidden)
	assert.NoError(t, f.threads.Delete(author, "general", a.Number))
	assert.NoError(t, f.threads.Delete(mod, "general", b.Number))
	assert.NoError(t, f.threads.Delete(Actor{Admin: true}, "general", c.Number))
	assert.ErrorIs(t, f.threads.Delete(owner, "general", c.Number), ErrThreadNotFound)
}

func TestChannelDeleteCascades(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")
	f.channel(t, owner, "general")
	th := f.thread(t, owner, "general")
	f.comment(t, owner, "general", th.Number, "hi")

	require.NoError(t, f.channels.Delete(owner, "general"))
	assert.Zero(t, f.count(t, &models.Channel{}, ""))
	assert.Zero(t, f.count(t, &models.Thread{}, ""))
	assert.Zero(t, f.count(t, &models.Comment{}, ""))
	assert.EqualValues(t, 1, f.count(t, &models.User{}, ""))
}

func TestCommentNumberingAndOrder(t *testing.T) {
	f := setup(t)
	u1 := f.user(t, "testuser3")
	u2 := f.user(t, "testuser4")
	u3 := f.user(t, "testuser5")
	f.channel(t, u1, "aaatestchannel")
	th := f.thread(t, u2, "aaatestchannel")

	comments, total, err := f.comments.List("aaatestchannel", th.Number, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.Zero(t, total)

	c1 := f.comment(t, u3, "aaatestchannel", th.Number, "test text :)")
	c2 := f.comment(t, u2, "aaatestchannel", th.Number, "): txet tset")
	assert.Equal(t, 0, c1.Number)
	assert.Equal(t, 1, c2.Number)
	assert.Equal(t, "test text :)", c1.String())

	comments, total, err = f.comments.List("aaatestchannel", th.Number, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, comments, 2)
	assert.Equal(t, "test text :)", comments[0].Text)
	require.NotNil(t, comments[0].Owner)
	assert.Equal(t, "testuser5", comments[0].Owner.Username)
}

func TestUniqueComment(t *testing.T) {
	f := setup(t)
	u1 := f.user(t, "testuser3")
	u2 := f.user(t, "testuser4")
	f.channel(t, u1, "aaatestchannel")
	f.channel(t, u2, "aaatestc")
	t1 := f.thread(t, u1, "aaatestchannel")
	t2 := f.thread(t, u2, "aaatestc")
	co1 := f.comment(t, u1, "aaatestchannel", t1.Number, "text")
	co2 := f.comment(t, u2, "aaatestchannel", t1.Number, "text")
	co3 := f.comment(t, u2, "aaatestc", t2.Number, "text")
	co4 := f.comment(t, u2, "aaatestc", t2.Number, "text")

	assert.Equal(t, co1.Number, co3.Number)
	assert.Equal(t, co2.Number, co4.Number)

	for _, c := range []models.Comment{
		{ThreadID: t1.ID, Number: 0},
		{ThreadID: t1.ID, Number: 1},
		{ThreadID: t2.ID, Number: 1},
	} {
		assert.Equal(t, []string{"comment_id", "thread"}, fieldsOf(t, c.ValidateUnique(f.db)))
	}
}

func TestCommentReplyTarget(t *testing.T) {
	f := setup(t)
	u := f.user(t, "owner")
	f.channel(t, u, "general")
	th := f.thread(t, u, "general")
	other := f.thread(t, u, "general")
	root := f.comment(t, u, "general", th.Number, "root")
	f.comment(t, u, "general", other.Number, "elsewhere")

	reply, err := f.comments.Create(u, "general", th.Number, "reply", &root.Number)
	require.NoError(t, err)
	require.NotNil(t, reply.ReplyTo)
	assert.Equal(t, root.Number, *reply.ReplyTo)

	missing := 42
	_, err = f.comments.Create(u, "general", th.Number, "reply", &missing)
	assert.ErrorIs(t, err, ErrReplyTargetNotFound)

	_, err = f.comments.Create(u, "general", th.Number, "   ", nil)
	assert.Equal(t, []string{"text"}, fieldsOf(t, err))
}

func TestCommentDeleteKeepsThread(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "testuser3")
	f.channel(t, owner, "aaatestchannel")
	th := f.thread(t, owner, "aaatestchannel")
	c := f.comment(t, owner, "aaatestchannel", th.Number, "text")

	require.NoError(t, f.comments.Delete(owner, "aaatestchannel", th.Number, c.Number))

	assert.EqualValues(t, 1, f.count(t, &models.Channel{}, ""))
	assert.EqualValues(t, 1, f.count(t, &models.Thread{}, "number = ?", th.Number))
	assert.Zero(t, f.count(t, &models.Comment{}, ""))
	assert.ErrorIs(t, f.comments.Delete(owner, "aaatestchannel", th.Number, c.Number), ErrCommentNotFound)
}

func TestAuthorCannotDeleteOwnComment(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")
	author := f.user(t, "author")
	mod := f.user(t, "mod")
	f.channel(t, owner, "general")
	mods := []string{"mod"}
	_, err := f.channels.Update(owner, "general", ChannelUpdate{Moderators: &mods})
	require.NoError(t, err)
	th := f.thread(t, author, "general")
	c1 := f.comment(t, author, "general", th.Number, "one")
	c2 := f.comment(t, author, "general", th.Number, "two")
	c3 := f.comment(t, author, "general", th.Number, "three")

	assert.ErrorIs(t, f.comments.Delete(author, "general", th.Number, c1.Number), ErrForbidden)
	assert.NoError(t, f.comments.Delete(owner, "general", th.Number, c1.Number))
	assert.NoError(t, f.comments.Delete(mod, "general", th.Number, c2.Number))
	assert.NoError(t, f.comments.Delete(Actor{Admin: true}, "general", th.Number, c3.Number))
}

func TestCommentIsRecent(t *testing.T) {
	f := setup(t)
	u := f.user(t, "testuser3")
	f.channel(t, u, "aaatestchannel")
	th := f.thread(t, u, "aaatestchannel")
	now := time.Now()

	offsets := []time.Duration{-48 * time.Hour, -12 * time.Hour, 0, 24 * time.Hour}
	want := []bool{false, true, true, false}
	for i, off := range offsets {
		c := f.comment(t, u, "aaatestchannel", th.Number, "text")
		require.NoError(t, f.db.Model(&models.Comment{}).Where("id = ?", c.ID).Update("pub_date", now.Add(off)).Error)
		got, err := f.comments.Get("aaatestchannel", th.Number, c.Number)
		require.NoError(t, err)
		assert.Equal(t, want[i], got.RecentAt(now), "offset %s", off)
	}
}

func TestChannelOwnerPassOff(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "owner")
	heir := f.user(t, "renwo")
	f.channel(t, owner, "Test-channel-123456789")
	f.thread(t, heir, "Test-channel-123456789")
	mods := []string{"ghost-free", "renwo"}
	require.NoError(t, f.db.Model(&models.Channel{}).Where("channel_name = ?", "Test-channel-123456789").
		Update("moderators", models.StringList(mods)).Error)

	require.NoError(t, f.users.Delete(owner.UserID))

	ch, err := f.channels.Get("Test-channel-123456789")
	require.NoError(t, err)
	assert.Equal(t, "renwo", ch.Owner.Username)
	assert.False(t, ch.Moderators.Contains("renwo"))
	assert.EqualValues(t, 1, f.count(t, &models.Thread{}, "channel_id = ?", ch.ID))
}

func TestUserDelete(t *testing.T) {
	f := setup(t)
	owner := f.user(t, "randomuser91387245")
	other := f.user(t, "54278319resumodnar")

	f.channel(t, owner, "channel1981719")
	sub := f.thread(t, owner, "channel1981719")
	f.comment(t, owner, "channel1981719", sub.Number, "mine")

	f.channel(t, other, "asfsga")
	f.thread(t, owner, "asfsga")
	otherThread := f.thread(t, other, "asfsga")
	kept := f.comment(t, owner, "asfsga", otherThread.Number, "survives")
	_, err := f.channels.Ban(other, "asfsga", "randomuser91387245")
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(owner.UserID))

	// the owned channel had no moderator and is gone with everything in it
	_, err = f.channels.Get("channel1981719")
	assert.ErrorIs(t, err, ErrChannelNotFound)
	assert.Zero(t, f.count(t, &models.Thread{}, "channel_id NOT IN (?)", f.db.Model(&models.Channel{}).Select("id")))
	assert.Zero(t, f.count(t, &models.Comment{}, "thread_id NOT IN (?)", f.db.Model(&models.Thread{}).Select("id")))

	// the other user's channel keeps its own thread and the orphaned comment
	ch, err := f.channels.Get("asfsga")
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.count(t, &models.Thread{}, "channel_id = ?", ch.ID))
	got, err := f.comments.Get("asfsga", otherThread.Number, kept.Number)
	require.NoError(t, err)
	assert.Nil(t, got.OwnerID)
	assert.False(t, ch.BannedUsers.Contains("randomuser91387245"))

	assert.Zero(t, f.count(t, &models.UserSettings{}, "user_id = ?", owner.UserID))
	_, err = f.users.Get(owner.UserID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, f.users.Delete(owner.UserID), ErrUserNotFound)
}

func TestStatsSummary(t *testing.T) {
	f := setup(t)
	u := f.user(t, "owner")
	f.channel(t, u, "general")
	th := f.thread(t, u, "general")
	f.comment(t, u, "general", th.Number, "hi")
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	require.NoError(t, f.db.Create(&models.PageView{Date: midnight, Path: "/", Count: 3}).Error)
	require.NoError(t, f.db.Create(&models.PageView{Date: midnight.AddDate(0, 0, -3), Path: "/", Count: 4}).Error)

	sum, err := NewStatsService(f.db).Summary()
	require.NoError(t, err)
	assert.EqualValues(t, 1, sum.Users)
	assert.EqualValues(t, 1, sum.Channels)
	assert.EqualValues(t, 1, sum.Threads)
	assert.EqualValues(t, 1, sum.Comments)
	assert.EqualValues(t, 3, sum.PageViewsToday)
	assert.EqualValues(t, 7, sum.PageViewsTotal)
}

func TestPaging(t *testing.T) {
	page, size, offset := Paging(0, 0)
	assert.Equal(t, []int{1, DefaultPageSize, 0}, []int{page, size, offset})
	page, size, offset = Paging(3, 500)
	assert.Equal(t, []int{3, MaxPageSize, 200}, []int{page, size, offset})
}
