// Package linedata synthesizes the line-segment data set: it renders random
// segments to PNG files, loads them back as grayscale pixel arrays, and
// splits them into training and test sets.
//
// Files are named line<i>.png with a zero-based index matching generation
// order, so image i always corresponds to coordinate tuple i.
package linedata
