package actions

// Tag names one action of one module
type Tag struct {
	Module string
	Action string
}

func (t Tag) String() string {
	return t.Module + "." + t.Action
}

// Module names
const (
	ModuleArchive   = "archive"
	ModuleDashboard = "dashboard"
	ModuleAuth      = "auth"
	ModuleStorage   = "storage"
	ModuleUtils     = "utils"
)

// Every routable action
var (
	CreateArticle                 = Tag{ModuleArchive, "createArticle"}
	UpdateArticle                 = Tag{ModuleArchive, "updateArticle"}
	DeleteArticle                 = Tag{ModuleArchive, "deleteArticle"}
	DeleteArticles                = Tag{ModuleArchive, "deleteArticles"}
	GetArticle                    = Tag{ModuleArchive, "getArticle"}
	GetArticles                   = Tag{ModuleArchive, "getArticles"}
	GetAllArticles                = Tag{ModuleArchive, "getAllArticles"}
	GetArticlesByStatus           = Tag{ModuleArchive, "getArticlesByStatus"}
	GetArticlesByTypeStatus       = Tag{ModuleArchive, "getArticlesByTypeStatus"}
	GetArticleByPathname          = Tag{ModuleArchive, "getArticleByPathname"}
	GetAllPublishedArticles       = Tag{ModuleArchive, "getAllPublishedArticles"}
	GetPublishedArticleByPathname = Tag{ModuleArchive, "getPublishedArticleByPathname"}

	CreateBookmarkGroup  = Tag{ModuleDashboard, "createBookmarkGroup"}
	UpdateBookmarkGroup  = Tag{ModuleDashboard, "updateBookmarkGroup"}
	DeleteBookmarkGroup  = Tag{ModuleDashboard, "deleteBookmarkGroup"}
	GetBookmarkGroup     = Tag{ModuleDashboard, "getBookmarkGroup"}
	GetAllBookmarkGroups = Tag{ModuleDashboard, "getAllBookmarkGroups"}

	VerifySession = Tag{ModuleAuth, "verifySession"}

	UploadImage = Tag{ModuleStorage, "uploadImage"}
	UpdateImage = Tag{ModuleStorage, "updateImage"}
	DeleteImage = Tag{ModuleStorage, "deleteImage"}

	Translate       = Tag{ModuleUtils, "translate"}
	GetSiteMetadata = Tag{ModuleUtils, "getSiteMetadata"}
)

// Entry declares a tag and whether it is reachable without a session
type Entry struct {
	Tag      Tag
	SkipAuth bool
}

// Catalog is the complete action surface. A registry must bind a handler to every entry.
var Catalog = []Entry{
	{CreateArticle, false},
	{UpdateArticle, false},
	{DeleteArticle, false},
	{DeleteArticles, false},
	{GetArticle, false},
	{GetArticles, false},
	{GetAllArticles, false},
	{GetArticlesByStatus, false},
	{GetArticlesByTypeStatus, false},
	{GetArticleByPathname, false},
	{GetAllPublishedArticles, true},
	{GetPublishedArticleByPathname, true},

	{CreateBookmarkGroup, false},
	{UpdateBookmarkGroup, false},
	{DeleteBookmarkGroup, false},
	{GetBookmarkGroup, false},
	{GetAllBookmarkGroups, false},

	{VerifySession, true},

	{UploadImage, false},
	{UpdateImage, false},
	{DeleteImage, false},

	{Translate, false},
	{GetSiteMetadata, false},
}

func lookupEntry(tag Tag) (Entry, bool) {
	for _, e := range Catalog {
		if e.Tag == tag {
			return e, true
		}
	}
	return Entry{}, false
}
