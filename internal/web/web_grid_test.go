package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinShowsEncryptedPosition(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	doc := ts.joinGrid()
	assertContainsText(t, doc, ".flash-success", "You joined the board")
	assertContainsElement(t, doc, "#position #handle-x")
	assertContainsElement(t, doc, "#position #handle-y")
	assertContainsText(t, doc, "#moves", "0")
	assertContainsText(t, doc, "#stats", "1 players")
	assertNotContainsElement(t, doc, "form[action='/grid/join']")

	// Direction buttons for all four moves
	for _, dir := range []string{"up", "down", "left", "right"} {
		assertContainsElement(t, doc, "#move button[name='direction'][value='"+dir+"']")
	}

	// Coordinates stay hidden until revealed
	assertNotContainsElement(t, doc, "#revealed")
	assert.Len(t, doc.Find("#handle-x").Text(), 66)
}

func TestJoinTwiceShowsError(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")
	ts.joinGrid()

	doc := ts.joinGrid()
	assertContainsText(t, doc, ".flash-error", "already on the board")
}

func TestMoveBeforeJoinShowsError(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	doc := ts.move("up")
	assertContainsText(t, doc, ".flash-error", "Join the board before moving")
}

func TestMoveUnknownDirection(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")
	ts.joinGrid()

	doc := ts.move("sideways")
	assertContainsText(t, doc, ".flash-error", "Unknown direction")
	assertContainsText(t, doc, "#moves", "0")
}

func TestMoveAndReveal(t *testing.T) {
	ts := newWebTestServer(t)
	ts.app.MockRandom.QueueUint8(1, 8)
	ts.createGuestPlayer("Alice")
	ts.joinGrid()

	doc := ts.reveal()
	assertContainsText(t, doc, "#x", "2")
	assertContainsText(t, doc, "#y", "9")

	before := doc.Find("#handle-x").Text()

	doc = ts.move("up")
	assertContainsText(t, doc, ".flash-success", "Moved up")
	assertContainsText(t, doc, "#moves", "1")
	// Every move writes fresh ciphertexts, even on the unchanged axis
	assert.NotEqual(t, before, doc.Find("#handle-x").Text())

	ts.move("up")
	ts.move("left")
	ts.move("left")

	doc = ts.reveal()
	assertContainsText(t, doc, "#x", "1")
	assertContainsText(t, doc, "#y", "10")
	assertContainsText(t, doc, "#moves", "4")

	// Top-left cell of the drawn board
	cells := doc.Find("table.board tr").First().Find("td")
	require.Equal(t, 10, cells.Length())
	assert.True(t, cells.First().HasClass("here"))
	assert.Equal(t, 1, doc.Find("td.here").Length())
}

func TestRevealBeforeJoin(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	rr := ts.post("/grid/reveal", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-error", "not on the board")
}

func TestPlayersOnlySeeTheirOwnBoard(t *testing.T) {
	alice := newWebTestServer(t)
	alice.createGuestPlayer("Alice")
	alice.joinGrid()

	// A second browser against the same app
	bob := &webTestServer{t: t, handler: alice.handler, app: alice.app, cookies: newCookieJar()}
	bob.createGuestPlayer("Bob")

	doc := parseHTML(bob.get("/").Body)
	assertContainsElement(t, doc, "form[action='/grid/join']")
	assertContainsText(t, doc, "#stats", "1 players")
}
