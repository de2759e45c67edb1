package metadata

// Field is a logical metadata concept (artist, album, title, ...)
// projected through each variant's own key naming. An empty string at
// index v means that format doesn't carry this field.
type Field [numVariants]string

// Key returns the raw key a tag block of the given variant uses for this
// field, and whether that variant carries the field at all.
func (f Field) Key(v Variant) (string, bool) {
	k := f[v]
	return k, k != ""
}

// Logical field descriptors, per spec: the raw key each variant uses for
// a given abstract field. Vorbis convention is case-insensitive but keys
// here preserve the canonical casing a well-behaved writer would use;
// case folding happens downstream in the CollatedTextSet, not here.
var (
	FieldArtist = Field{
		ID3v1:  "artist",
		ID3v2:  "TPE1",
		FLAC:   "ARTIST",
		Vorbis: "ARTIST",
		APE:    "Artist",
		MP4:    "\xa9ART",
	}
	FieldAlbum = Field{
		ID3v1:  "album",
		ID3v2:  "TALB",
		FLAC:   "ALBUM",
		Vorbis: "ALBUM",
		APE:    "Album",
		MP4:    "\xa9alb",
	}
	FieldTitle = Field{
		ID3v1:  "title",
		ID3v2:  "TIT2",
		FLAC:   "TITLE",
		Vorbis: "TITLE",
		APE:    "Title",
		MP4:    "\xa9nam",
	}
	FieldAlbumArtist = Field{
		ID3v2:  "TPE2",
		FLAC:   "ALBUMARTIST",
		Vorbis: "ALBUMARTIST",
		APE:    "Album Artist",
		MP4:    "aART",
	}
	FieldGenre = Field{
		ID3v1:  "genre",
		ID3v2:  "TCON",
		FLAC:   "GENRE",
		Vorbis: "GENRE",
		APE:    "Genre",
		MP4:    "\xa9gen",
	}
	FieldDate = Field{
		ID3v2:  "TDRC",
		FLAC:   "DATE",
		Vorbis: "DATE",
		APE:    "Year",
		MP4:    "\xa9day",
	}
	FieldOriginalDate = Field{
		FLAC:   "ORIGINALDATE",
		Vorbis: "ORIGINALDATE",
	}
	FieldTrackNumber = Field{
		ID3v1:  "track",
		ID3v2:  "TRCK",
		FLAC:   "TRACKNUMBER",
		Vorbis: "TRACKNUMBER",
		APE:    "Track",
		MP4:    "trkn",
	}
)
