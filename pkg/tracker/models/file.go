package models

// SharedFile is one registered file in the catalog.
//
// The file bytes never touch the tracker; Path points at the file on the
// owning peer's filesystem and is handed to downloaders verbatim. A row is
// immutable: it is created by register and removed by deregister, never
// updated in place.
type SharedFile struct {
	ID    int    `gorm:"primaryKey;autoIncrement:false;column:file_id"`
	Name  string `gorm:"size:100;column:file_name;uniqueIndex:idx_owner_file,priority:2"`
	Type  string `gorm:"size:25;column:file_type;uniqueIndex:idx_owner_file,priority:3"`
	Path  string `gorm:"size:300;column:file_path;uniqueIndex:idx_owner_file,priority:4"`
	Size  int64  `gorm:"column:file_size"`
	Owner string `gorm:"size:25;column:user_name;uniqueIndex:idx_owner_file,priority:1"`

	// Foreign reference to the owning account.
	User User `gorm:"foreignKey:Owner;references:Name"`
}

// TableName returns the table name for SharedFile.
func (SharedFile) TableName() string {
	return "user_files"
}

// HostAddr is one live host for a file, as returned by host lookups.
type HostAddr struct {
	Owner string
	IP    string
	Port  int
	Path  string
}
