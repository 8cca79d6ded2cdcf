package variant

// How class selectors are guarded.
//
// guard keeps the original class and adds a ", :where(.<modifier><sep><class>)"
// group after it.
// where renames the class to "<modifier><sep><class>" and wraps the whole
// selector in "html:where(...)".
// ENUM(guard, where)
type Strategy int
