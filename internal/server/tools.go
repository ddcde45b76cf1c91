package server

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"anki-mcp/internal/schema"
)

// HandlerFunc executes one tool call with validated, defaulted arguments.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// ToolEntry binds a tool name to its description, parameter schema, and
// handler. The root schema node of every entry is an object. Entries are
// registered once in New and are read-only afterwards.
type ToolEntry struct {
	Name        string
	Description string
	Schema      *schema.Node
	Handler     HandlerFunc
}

// infoChunkSize is the per-call item cap applied when forwarding id lists to
// AnkiConnect bulk-info actions.
const infoChunkSize = 100

// defaultPageLimit bounds find results per page unless the caller overrides.
const defaultPageLimit = 50

// forward returns a handler that passes the validated arguments to a single
// AnkiConnect action unchanged and relays the raw result. Most tools are
// exactly this thin.
func (s *Server) forward(action string) HandlerFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		var params any
		if len(args) > 0 {
			params = args
		}
		return s.anki.Invoke(ctx, action, params)
	}
}

// forwardPaginated runs a find action, then windows the returned id list with
// the caller's offset/limit. The full list is fetched fresh on every call.
func (s *Server) forwardPaginated(action string) HandlerFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		raw, err := s.anki.Invoke(ctx, action, map[string]any{"query": args["query"]})
		if err != nil {
			return nil, err
		}
		var ids []int64
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil, errors.Wrapf(err, "decode %s result", action)
		}
		return Paginate(ids, asInt(args["offset"]), asInt(args["limit"])), nil
	}
}

// forwardChunked splits the id list argument named key into capped groups and
// issues one sequential AnkiConnect call per group, concatenating the
// per-item results in input order.
func (s *Server) forwardChunked(action, key string) HandlerFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		ids, _ := args[key].([]any)
		results, err := ChunkAndSend(ids, infoChunkSize, func(chunk []any) ([]any, error) {
			raw, err := s.anki.Invoke(ctx, action, map[string]any{key: chunk})
			if err != nil {
				return nil, err
			}
			var out []any
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, errors.Wrapf(err, "decode %s result", action)
			}
			return out, nil
		})
		if err != nil {
			return nil, err
		}
		if results == nil {
			results = []any{}
		}
		return results, nil
	}
}

// asInt narrows a validated number argument. Defaults arrive as Go ints,
// caller-supplied values as JSON float64s.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// noteNode is the shared schema for a new note, used by addNote and addNotes.
func noteNode() *schema.Node {
	return schema.Object(
		schema.Field{Name: "deckName", Node: schema.String().Describe("Name of the deck to add the note to")},
		schema.Field{Name: "modelName", Node: schema.String().Describe("Name of the note type (model)")},
		schema.Field{Name: "fields", Node: schema.Record(schema.String()).Describe("Field name to field content, matching the model's fields")},
		schema.Field{Name: "tags", Node: schema.Optional(schema.Array(schema.String())).Describe("Tags to attach to the note")},
		schema.Field{Name: "options", Node: schema.Optional(schema.Object(
			schema.Field{Name: "allowDuplicate", Node: schema.Default(schema.Optional(schema.Boolean()), false).Describe("Allow a note whose first field duplicates an existing note")},
			schema.Field{Name: "duplicateScope", Node: schema.Default(schema.String(), "deck").Describe("Scope for the duplicate check, e.g. \"deck\"")},
		))},
		schema.Field{Name: "audio", Node: schema.Optional(schema.Array(mediaAttachmentNode())).Describe("Audio files to download and attach")},
		schema.Field{Name: "picture", Node: schema.Optional(schema.Array(mediaAttachmentNode())).Describe("Pictures to download and attach")},
	)
}

func mediaAttachmentNode() *schema.Node {
	return schema.Object(
		schema.Field{Name: "filename", Node: schema.String().Describe("Filename to store the media under")},
		schema.Field{Name: "url", Node: schema.Optional(schema.String()).Describe("URL to download the media from")},
		schema.Field{Name: "data", Node: schema.Optional(schema.String()).Describe("Base64-encoded media content")},
		schema.Field{Name: "path", Node: schema.Optional(schema.String()).Describe("Absolute path to a local media file")},
		schema.Field{Name: "fields", Node: schema.Array(schema.String()).Describe("Note fields the media is referenced from")},
	)
}

func idListSchema(key, desc string) *schema.Node {
	return schema.Object(
		schema.Field{Name: key, Node: schema.Array(schema.Number()).Describe(desc)},
	)
}

func findSchema(desc string) *schema.Node {
	return schema.Object(
		schema.Field{Name: "query", Node: schema.String().Describe(desc)},
		schema.Field{Name: "offset", Node: schema.Default(schema.Number(), 0).Describe("Index of the first id to return")},
		schema.Field{Name: "limit", Node: schema.Default(schema.Number(), defaultPageLimit).Describe("Maximum ids to return; 0 returns only the total count")},
	)
}

func emptySchema() *schema.Node { return schema.Object() }

// registerTools wires the AnkiConnect surface. Every handler forwards
// validated arguments and relays results; none of them second-guess Anki's
// own semantics.
func (s *Server) registerTools() {
	// Decks
	s.register(
		ToolEntry{Name: "deckNames", Description: "List the names of all decks", Schema: emptySchema(), Handler: s.forward("deckNames")},
		ToolEntry{Name: "deckNamesAndIds", Description: "List all decks with their ids", Schema: emptySchema(), Handler: s.forward("deckNamesAndIds")},
		ToolEntry{Name: "createDeck", Description: "Create a deck (parents are created as needed)", Schema: schema.Object(
			schema.Field{Name: "deck", Node: schema.String().Describe("Deck name; use :: for nesting")},
		), Handler: s.forward("createDeck")},
		ToolEntry{Name: "deleteDecks", Description: "Delete decks and the cards in them", Schema: schema.Object(
			schema.Field{Name: "decks", Node: schema.Array(schema.String()).Describe("Deck names to delete")},
			schema.Field{Name: "cardsToo", Node: schema.Default(schema.Boolean(), true).Describe("Also delete the decks' cards")},
		), Handler: s.forward("deleteDecks")},
		ToolEntry{Name: "getDeckConfig", Description: "Get the options group of a deck", Schema: schema.Object(
			schema.Field{Name: "deck", Node: schema.String().Describe("Deck name")},
		), Handler: s.forward("getDeckConfig")},
		ToolEntry{Name: "changeDeck", Description: "Move cards to another deck", Schema: schema.Object(
			schema.Field{Name: "cards", Node: schema.Array(schema.Number()).Describe("Card ids to move")},
			schema.Field{Name: "deck", Node: schema.String().Describe("Destination deck name")},
		), Handler: s.forward("changeDeck")},
		ToolEntry{Name: "getDeckStats", Description: "Get per-deck statistics", Schema: schema.Object(
			schema.Field{Name: "decks", Node: schema.Array(schema.String()).Describe("Deck names")},
		), Handler: s.forward("getDeckStats")},
	)

	// Notes
	s.register(
		ToolEntry{Name: "addNote", Description: "Add a single note", Schema: schema.Object(
			schema.Field{Name: "note", Node: noteNode()},
		), Handler: s.forward("addNote")},
		ToolEntry{Name: "addNotes", Description: "Add multiple notes in one call", Schema: schema.Object(
			schema.Field{Name: "notes", Node: schema.Array(noteNode())},
		), Handler: s.forward("addNotes")},
		ToolEntry{Name: "updateNoteFields", Description: "Replace field contents of an existing note", Schema: schema.Object(
			schema.Field{Name: "note", Node: schema.Object(
				schema.Field{Name: "id", Node: schema.Number().Describe("Note id")},
				schema.Field{Name: "fields", Node: schema.Record(schema.String()).Describe("Field name to new content")},
			)},
		), Handler: s.forward("updateNoteFields")},
		ToolEntry{Name: "findNotes", Description: "Find note ids matching an Anki search query, paginated", Schema: findSchema("Anki search query, e.g. deck:Default tag:leech"), Handler: s.forwardPaginated("findNotes")},
		ToolEntry{Name: "notesInfo", Description: "Fetch note details for a list of note ids", Schema: idListSchema("notes", "Note ids"), Handler: s.forwardChunked("notesInfo", "notes")},
		ToolEntry{Name: "deleteNotes", Description: "Delete notes and their cards", Schema: idListSchema("notes", "Note ids to delete"), Handler: s.forward("deleteNotes")},
		ToolEntry{Name: "addTags", Description: "Add tags to notes", Schema: schema.Object(
			schema.Field{Name: "notes", Node: schema.Array(schema.Number()).Describe("Note ids")},
			schema.Field{Name: "tags", Node: schema.String().Describe("Space-separated tags to add")},
		), Handler: s.forward("addTags")},
		ToolEntry{Name: "removeTags", Description: "Remove tags from notes", Schema: schema.Object(
			schema.Field{Name: "notes", Node: schema.Array(schema.Number()).Describe("Note ids")},
			schema.Field{Name: "tags", Node: schema.String().Describe("Space-separated tags to remove")},
		), Handler: s.forward("removeTags")},
		ToolEntry{Name: "getTags", Description: "List every tag in the collection", Schema: emptySchema(), Handler: s.forward("getTags")},
	)

	// Cards
	s.register(
		ToolEntry{Name: "findCards", Description: "Find card ids matching an Anki search query, paginated", Schema: findSchema("Anki search query, e.g. deck:Default is:due"), Handler: s.forwardPaginated("findCards")},
		ToolEntry{Name: "cardsInfo", Description: "Fetch card details for a list of card ids", Schema: idListSchema("cards", "Card ids"), Handler: s.forwardChunked("cardsInfo", "cards")},
		ToolEntry{Name: "suspend", Description: "Suspend cards", Schema: idListSchema("cards", "Card ids to suspend"), Handler: s.forward("suspend")},
		ToolEntry{Name: "unsuspend", Description: "Unsuspend cards", Schema: idListSchema("cards", "Card ids to unsuspend"), Handler: s.forward("unsuspend")},
		ToolEntry{Name: "areDue", Description: "Check whether each card is due", Schema: idListSchema("cards", "Card ids"), Handler: s.forward("areDue")},
		ToolEntry{Name: "setEaseFactors", Description: "Set ease factors for cards", Schema: schema.Object(
			schema.Field{Name: "cards", Node: schema.Array(schema.Number()).Describe("Card ids")},
			schema.Field{Name: "easeFactors", Node: schema.Array(schema.Number()).Describe("Ease factor per card, in permille")},
		), Handler: s.forward("setEaseFactors")},
		ToolEntry{Name: "forgetCards", Description: "Reset cards to new", Schema: idListSchema("cards", "Card ids to reset"), Handler: s.forward("forgetCards")},
		ToolEntry{Name: "answerCards", Description: "Answer due cards", Schema: schema.Object(
			schema.Field{Name: "answers", Node: schema.Array(schema.Object(
				schema.Field{Name: "cardId", Node: schema.Number().Describe("Card id")},
				schema.Field{Name: "ease", Node: schema.Number().Describe("Answer ease, 1 (again) through 4 (easy)")},
			))},
		), Handler: s.forward("answerCards")},
	)

	// Models
	s.register(
		ToolEntry{Name: "modelNames", Description: "List the names of all note types", Schema: emptySchema(), Handler: s.forward("modelNames")},
		ToolEntry{Name: "modelNamesAndIds", Description: "List all note types with their ids", Schema: emptySchema(), Handler: s.forward("modelNamesAndIds")},
		ToolEntry{Name: "modelFieldNames", Description: "List the field names of a note type", Schema: schema.Object(
			schema.Field{Name: "modelName", Node: schema.String().Describe("Note type name")},
		), Handler: s.forward("modelFieldNames")},
		ToolEntry{Name: "modelTemplates", Description: "Get the card templates of a note type", Schema: schema.Object(
			schema.Field{Name: "modelName", Node: schema.String().Describe("Note type name")},
		), Handler: s.forward("modelTemplates")},
		ToolEntry{Name: "createModel", Description: "Create a new note type", Schema: schema.Object(
			schema.Field{Name: "modelName", Node: schema.String().Describe("Name for the new note type")},
			schema.Field{Name: "inOrderFields", Node: schema.Array(schema.String()).Describe("Field names in order")},
			schema.Field{Name: "css", Node: schema.Optional(schema.String()).Describe("Shared CSS for the templates")},
			schema.Field{Name: "isCloze", Node: schema.Default(schema.Optional(schema.Boolean()), false).Describe("Create a cloze note type")},
			schema.Field{Name: "cardTemplates", Node: schema.Array(schema.Object(
				schema.Field{Name: "Name", Node: schema.Optional(schema.String()).Describe("Template name")},
				schema.Field{Name: "Front", Node: schema.String().Describe("Front template HTML")},
				schema.Field{Name: "Back", Node: schema.String().Describe("Back template HTML")},
			))},
		), Handler: s.forward("createModel")},
	)

	// Media
	s.register(
		ToolEntry{Name: "storeMediaFile", Description: "Store a file in the media folder from base64 data, a local path, or a URL", Schema: schema.Object(
			schema.Field{Name: "filename", Node: schema.String().Describe("Filename to store the media under")},
			schema.Field{Name: "data", Node: schema.Optional(schema.String()).Describe("Base64-encoded content")},
			schema.Field{Name: "path", Node: schema.Optional(schema.String()).Describe("Absolute path to a local file")},
			schema.Field{Name: "url", Node: schema.Optional(schema.String()).Describe("URL to download from")},
			schema.Field{Name: "deleteExisting", Node: schema.Default(schema.Boolean(), true).Describe("Overwrite an existing file of the same name")},
		), Handler: s.forward("storeMediaFile")},
		ToolEntry{Name: "retrieveMediaFile", Description: "Read a media file as base64", Schema: schema.Object(
			schema.Field{Name: "filename", Node: schema.String().Describe("Media filename")},
		), Handler: s.forward("retrieveMediaFile")},
		ToolEntry{Name: "getMediaFilesNames", Description: "List media filenames matching a pattern", Schema: schema.Object(
			schema.Field{Name: "pattern", Node: schema.Default(schema.String(), "*").Describe("Glob pattern")},
		), Handler: s.forward("getMediaFilesNames")},
		ToolEntry{Name: "deleteMediaFile", Description: "Delete a file from the media folder", Schema: schema.Object(
			schema.Field{Name: "filename", Node: schema.String().Describe("Media filename")},
		), Handler: s.forward("deleteMediaFile")},
	)

	// Statistics, sync, GUI, import/export
	s.register(
		ToolEntry{Name: "getNumCardsReviewedToday", Description: "Number of cards reviewed today", Schema: emptySchema(), Handler: s.forward("getNumCardsReviewedToday")},
		ToolEntry{Name: "cardReviews", Description: "Review log entries for a deck since a point in time", Schema: schema.Object(
			schema.Field{Name: "deck", Node: schema.String().Describe("Deck name")},
			schema.Field{Name: "startID", Node: schema.Number().Describe("Only reviews with id (ms timestamp) strictly greater than this")},
		), Handler: s.forward("cardReviews")},
		ToolEntry{Name: "sync", Description: "Trigger a sync with AnkiWeb", Schema: emptySchema(), Handler: s.forward("sync")},
		ToolEntry{Name: "guiBrowse", Description: "Open the card browser on a search query", Schema: schema.Object(
			schema.Field{Name: "query", Node: schema.String().Describe("Anki search query")},
		), Handler: s.forward("guiBrowse")},
		ToolEntry{Name: "guiDeckReview", Description: "Start reviewing a deck in the GUI", Schema: schema.Object(
			schema.Field{Name: "name", Node: schema.String().Describe("Deck name")},
		), Handler: s.forward("guiDeckReview")},
		ToolEntry{Name: "exportPackage", Description: "Export a deck to an .apkg file", Schema: schema.Object(
			schema.Field{Name: "deck", Node: schema.Union(schema.String(), schema.Number()).Describe("Deck name or deck id")},
			schema.Field{Name: "path", Node: schema.String().Describe("Destination path for the .apkg file")},
			schema.Field{Name: "includeSched", Node: schema.Default(schema.Boolean(), false).Describe("Include scheduling information")},
		), Handler: s.forward("exportPackage")},
		ToolEntry{Name: "importPackage", Description: "Import an .apkg file into the collection", Schema: schema.Object(
			schema.Field{Name: "path", Node: schema.String().Describe("Path to the .apkg file")},
		), Handler: s.forward("importPackage")},
		ToolEntry{Name: "version", Description: "Report the AnkiConnect API version", Schema: emptySchema(), Handler: s.forward("version")},
	)
}
