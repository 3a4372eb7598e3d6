package cc2svn

/*
history-file -> event * (newest event first; the replayer walks it backwards)

event ->
  <date:YYYYMMDD.HHMMSS> "@@@" <element-path> "@@@" <version-id> "@@@"
  <operation> "@@@" <labels> "@@@" <attributes> "@@@" <element-type> "@@@"
  <user> "@@@" <comment> "@@@" <newline>

version-id -> *( "/" <branch-name> ) "/" <digits>:version-number

labels -> "" | "(" <label> *( ", " <label> ) ")"

attributes -> "" | "(" <attribute> *( ", " <attribute> ) ")"

element-type -> "version" | "directory version" | "symbolic link" | <other>

Comments may span physical lines; only the separators delimit fields, so a
line with fewer than ten fields is the tail of an event whose beginning
appears on an earlier physical line.

The emitted dump is format 2:

dump -> format-header revision *

format-header ->
  "SVN-fs-dump-format-version: 2" <newline> <newline>
  "UUID: " <uuid> <newline> <newline>

revision ->
  "Revision-number: " <digits> <newline>
  revision-props node *

revision-props ->
  "Prop-content-length: " <digits>:L <newline>
  "Content-length: " <digits>:L <newline> <newline>
  <L bytes of property-data> <newline> <newline>

property-data -> key-value-pair * props-end

key-value-pair ->
  "K " <digits>:key-length <newline> <key-length bytes> <newline>
  "V " <digits>:value-length <newline> <value-length bytes> <newline>

props-end -> "PROPS-END" <newline>

node -> file-node | dir-add | copy | delete

file-node ->
  "Node-path: " <newline-terminated-string>
  "Node-kind: file" <newline>
  "Node-action: " ( "change" | "add" ) <newline>
  "Prop-content-length: " <digits>:P <newline>
  "Text-content-length: " <digits>:T <newline>
  "Text-content-md5: " <hex-digest> <newline>
  "Content-length: " <digits>:T+P <newline> <newline>
  <P bytes of property-data> <T bytes of content> <newline> <newline>

dir-add ->
  "Node-path: " <newline-terminated-string>
  "Node-kind: dir" <newline>
  "Node-action: add" <newline> <newline>

copy ->
  "Node-path: " <newline-terminated-string>
  "Node-kind: " ( "file" | "dir" ) <newline>
  "Node-action: add" <newline>
  "Node-copyfrom-rev: " <digits> <newline>
  "Node-copyfrom-path: " <newline-terminated-string> <newline>

delete ->
  "Node-path: " <newline-terminated-string>
  "Node-action: delete" <newline> <newline>
*/
